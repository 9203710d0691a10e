package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Event names served by the event stream. Character-scoped events carry a
// character_id; world-scoped events only carry a world_id.
const (
	PlayerLogin  = "PlayerLogin"
	PlayerLogout = "PlayerLogout"

	AchievementEarned     = "AchievementEarned"
	BattleRankUp          = "BattleRankUp"
	Death                 = "Death"
	GainExperience        = "GainExperience"
	ItemAdded             = "ItemAdded"
	PlayerFacilityCapture = "PlayerFacilityCapture"
	PlayerFacilityDefend  = "PlayerFacilityDefend"
	SkillAdded            = "SkillAdded"
	VehicleDestroy        = "VehicleDestroy"

	ContinentLock   = "ContinentLock"
	ContinentUnlock = "ContinentUnlock"
	FacilityControl = "FacilityControl"
	MetagameEvent   = "MetagameEvent"
)

const experienceIDPrefix = GainExperience + "_experience_id_"

// GainExperienceByID returns the experience-id-scoped variant of the
// GainExperience event name. Subscribing to it streams only ticks of that
// experience type, e.g. revives, instead of every experience gain.
func GainExperienceByID(id int64) string {
	return fmt.Sprintf("%s%d", experienceIDPrefix, id)
}

// ExperienceIDFromName extracts the experience ID from a scoped
// GainExperience name. Returns false for every other name.
func ExperienceIDFromName(name string) (int64, bool) {
	rest, ok := strings.CutPrefix(name, experienceIDPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsWorldEvent reports whether the event name is world-scoped rather than
// character-scoped. World events ignore the characters subscription list.
func IsWorldEvent(name string) bool {
	switch name {
	case ContinentLock, ContinentUnlock, FacilityControl, MetagameEvent:
		return true
	}
	return false
}

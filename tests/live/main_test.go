//go:build live

// Package live exercises the client against the real Census API. Run with
//
//	CENSUS_SERVICE_ID=s:yourid go test -tags live ./tests/live/
//
// Without a service ID the shared example ID is used, which is heavily
// rate-limited and may fail under parallel runs.
package live

import (
	"os"
	"testing"

	"github.com/auraxtools/auraxis"
)

var (
	serviceID string
	client    *auraxis.Client
)

func TestMain(m *testing.M) {
	serviceID = os.Getenv("CENSUS_SERVICE_ID")
	if serviceID == "" {
		serviceID = "s:example"
	}

	client = auraxis.New(auraxis.WithServiceID(serviceID))

	os.Exit(m.Run())
}

package ps2

import (
	"context"

	"github.com/auraxtools/auraxis"
)

const (
	collectionDirective        = "directive"
	collectionDirectiveTier    = "directive_tier"
	collectionDirectiveTree    = "directive_tree"
	collectionDirectiveTreeCat = "directive_tree_category"

	fieldDirectiveTreeID = "directive_tree_id"
)

var (
	directiveCache     = newResourceCache[Directive](staticCacheSize, staticCacheTTL)
	directiveTierCache = newResourceCache[DirectiveTier](staticCacheSize, staticCacheTTL)
	directiveTreeCache = newResourceCache[DirectiveTree](staticCacheSize, staticCacheTTL)
	directiveCatCache  = newResourceCache[DirectiveTreeCategory](staticCacheSize, staticCacheTTL)
)

// Directive is a single objective counting towards a directive tier, e.g.
// kills with one weapon family.
type Directive struct {
	ID                   auraxis.CensusInt  `json:"directive_id"`
	DirectiveTreeID      auraxis.CensusInt  `json:"directive_tree_id"`
	DirectiveTierID      auraxis.CensusInt  `json:"directive_tier_id"`
	ObjectiveSetID       auraxis.CensusInt  `json:"objective_set_id"`
	QualifyRequirementID auraxis.CensusInt  `json:"qualify_requirement_id"`
	Name                 auraxis.LocaleData `json:"name"`
	Description          auraxis.LocaleData `json:"description"`
	ImageData
}

// DirectiveTier is one completion stage of a directive tree, e.g.
// "Carbines: Novice".
type DirectiveTier struct {
	ID                    auraxis.CensusInt  `json:"directive_tier_id"`
	DirectiveTreeID       auraxis.CensusInt  `json:"directive_tree_id"`
	RewardSetID           auraxis.CensusInt  `json:"reward_set_id"`
	DirectivePoints       auraxis.CensusInt  `json:"directive_points"`
	CompletionCount       auraxis.CensusInt  `json:"completion_count"`
	RequiredForCompletion auraxis.CensusInt  `json:"required_for_completion"`
	Name                  auraxis.LocaleData `json:"name"`
	ImageData
}

// DirectiveTree groups the tiers and directives for one pursuit, e.g.
// "Carbines".
type DirectiveTree struct {
	ID          auraxis.CensusInt  `json:"directive_tree_id"`
	CategoryID  auraxis.CensusInt  `json:"directive_tree_category_id"`
	Name        auraxis.LocaleData `json:"name"`
	Description auraxis.LocaleData `json:"description"`
	ImageData
}

// DirectiveTreeCategory is the top grouping shown in-game, e.g. "Weapons".
type DirectiveTreeCategory struct {
	ID   auraxis.CensusInt  `json:"directive_tree_category_id"`
	Name auraxis.LocaleData `json:"name"`
}

// DirectiveByID fetches a directive by ID.
func DirectiveByID(ctx context.Context, c *auraxis.Client, id int64) (*Directive, error) {
	if d, ok := directiveCache.getID(id); ok {
		return d, nil
	}
	d, err := getByID[Directive](ctx, c, collectionDirective, "directive_id", id)
	if err != nil {
		return nil, err
	}
	directiveCache.setID(id, d)
	return d, nil
}

// DirectiveTierByID fetches a directive tier by ID.
func DirectiveTierByID(ctx context.Context, c *auraxis.Client, id int64) (*DirectiveTier, error) {
	if t, ok := directiveTierCache.getID(id); ok {
		return t, nil
	}
	t, err := getByID[DirectiveTier](ctx, c, collectionDirectiveTier, "directive_tier_id", id)
	if err != nil {
		return nil, err
	}
	directiveTierCache.setID(id, t)
	return t, nil
}

// DirectiveTreeByID fetches a directive tree by ID.
func DirectiveTreeByID(ctx context.Context, c *auraxis.Client, id int64) (*DirectiveTree, error) {
	if tr, ok := directiveTreeCache.getID(id); ok {
		return tr, nil
	}
	tr, err := getByID[DirectiveTree](ctx, c, collectionDirectiveTree, fieldDirectiveTreeID, id)
	if err != nil {
		return nil, err
	}
	directiveTreeCache.setID(id, tr)
	return tr, nil
}

// DirectiveTreeCategoryByID fetches a directive tree category by ID.
func DirectiveTreeCategoryByID(ctx context.Context, c *auraxis.Client, id int64) (*DirectiveTreeCategory, error) {
	if cat, ok := directiveCatCache.getID(id); ok {
		return cat, nil
	}
	cat, err := getByID[DirectiveTreeCategory](ctx, c, collectionDirectiveTreeCat, "directive_tree_category_id", id)
	if err != nil {
		return nil, err
	}
	directiveCatCache.setID(id, cat)
	return cat, nil
}

// Tree fetches the tree a directive belongs to.
func (d *Directive) Tree(ctx context.Context, c *auraxis.Client) (*DirectiveTree, error) {
	return DirectiveTreeByID(ctx, c, d.DirectiveTreeID.Int64())
}

// Tier fetches the tier a directive counts towards.
func (d *Directive) Tier(ctx context.Context, c *auraxis.Client) (*DirectiveTier, error) {
	return DirectiveTierByID(ctx, c, d.DirectiveTierID.Int64())
}

// Tree fetches the tree a tier belongs to.
func (t *DirectiveTier) Tree(ctx context.Context, c *auraxis.Client) (*DirectiveTree, error) {
	return DirectiveTreeByID(ctx, c, t.DirectiveTreeID.Int64())
}

// Category fetches the category a tree is shown under.
func (tr *DirectiveTree) Category(ctx context.Context, c *auraxis.Client) (*DirectiveTreeCategory, error) {
	return DirectiveTreeCategoryByID(ctx, c, tr.CategoryID.Int64())
}

// Directives lists every directive in the tree.
func (tr *DirectiveTree) Directives(ctx context.Context, c *auraxis.Client) ([]*Directive, error) {
	q := c.NewQuery(collectionDirective).
		Where(fieldDirectiveTreeID, tr.ID.Int64()).
		Limit(400)
	return find[Directive](ctx, c, q)
}

// Tiers lists the tree's tiers in progression order.
func (tr *DirectiveTree) Tiers(ctx context.Context, c *auraxis.Client) ([]*DirectiveTier, error) {
	q := c.NewQuery(collectionDirectiveTier).
		Where(fieldDirectiveTreeID, tr.ID.Int64()).
		Limit(10)
	return find[DirectiveTier](ctx, c, q)
}

// Trees lists every tree in the category.
func (cat *DirectiveTreeCategory) Trees(ctx context.Context, c *auraxis.Client) ([]*DirectiveTree, error) {
	q := c.NewQuery(collectionDirectiveTree).
		Where("directive_tree_category_id", cat.ID.Int64()).
		Limit(100)
	return find[DirectiveTree](ctx, c, q)
}

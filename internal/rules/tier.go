package rules

type Tier string

const (
	TierGlobal        Tier = "global"
	TierGlobalPlugin  Tier = "global-plugin"
	TierProjectPlugin Tier = "project-plugin"
	TierProject       Tier = "project"
)

// Tiers lists every tier in ascending override order.
var Tiers = []Tier{TierGlobal, TierGlobalPlugin, TierProjectPlugin, TierProject}

// Rank returns the override priority of the tier. Higher ranks are merged
// later and win name collisions. Unknown tiers rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierGlobal:
		return 1
	case TierGlobalPlugin:
		return 2
	case TierProjectPlugin:
		return 3
	case TierProject:
		return 4
	default:
		return 0
	}
}

// Source is a discovered rule file.
type Source struct {
	Path string `json:"path" yaml:"path"`
	Tier Tier   `json:"tier" yaml:"tier"`
}

func (s Source) Rank() int {
	return s.Tier.Rank()
}

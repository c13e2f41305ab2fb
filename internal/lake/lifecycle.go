package lake

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// LifecycleRules returns the storage-class transition rules for a tier.
// Raw bronze data is kept hot the longest before archiving; silver and gold
// cool down faster because they can be rebuilt from the tier below.
func LifecycleRules(tier Tier) []types.LifecycleRule {
	switch tier {
	case TierBronze:
		return []types.LifecycleRule{lifecycleRule("Move to IA and Glacier",
			transition(60, types.TransitionStorageClassStandardIa),
			transition(180, types.TransitionStorageClassGlacier),
		)}
	case TierSilver:
		return []types.LifecycleRule{lifecycleRule("Move to IA and Glacier",
			transition(30, types.TransitionStorageClassStandardIa),
			transition(90, types.TransitionStorageClassGlacier),
		)}
	default:
		return []types.LifecycleRule{lifecycleRule("Move to IA",
			transition(30, types.TransitionStorageClassStandardIa),
		)}
	}
}

func lifecycleRule(id string, transitions ...types.Transition) types.LifecycleRule {
	return types.LifecycleRule{
		ID:          aws.String(id),
		Status:      types.ExpirationStatusEnabled,
		Filter:      &types.LifecycleRuleFilter{Prefix: aws.String("")},
		Transitions: transitions,
	}
}

func transition(days int32, class types.TransitionStorageClass) types.Transition {
	return types.Transition{
		Days:         aws.Int32(days),
		StorageClass: class,
	}
}

package entitlement

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"vidora/models"
)

// Resolver decides whether a user may play a video. It is stateless and
// side-effect-free; recording the watch event is the Recorder's job.
type Resolver struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewResolver(db *gorm.DB, logger *log.Logger) *Resolver {
	return NewResolverWithStore(NewStore(db), logger)
}

// NewResolverWithStore builds a resolver on an explicit Store, used by
// tests and by callers that already hold one.
func NewResolverWithStore(store Store, logger *log.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ResolveAccess returns the entitlement Decision for (user, video).
// Missing user or video is an error; a denial is a normal Decision value.
func (r *Resolver) ResolveAccess(ctx context.Context, userID, videoID uint) (Decision, error) {
	if _, err := r.store.GetUser(ctx, userID); err != nil {
		return Decision{}, err
	}

	video, err := r.store.GetVideo(ctx, videoID)
	if err != nil {
		return Decision{}, err
	}

	now := r.now()

	// Inactive videos and basic-tier videos are decided without touching
	// grants or subscriptions.
	if video.Status != models.VideoActive || video.Tier == models.TierBasic {
		return decide(video, nil, nil, now), nil
	}

	grant, err := r.store.GetActiveGrant(ctx, userID, videoID, now)
	if err != nil {
		return Decision{}, err
	}
	if grant != nil {
		return decide(video, grant, nil, now), nil
	}

	subs, err := r.store.GetCurrentSubscriptions(ctx, userID, now)
	if err != nil {
		return Decision{}, err
	}

	decision := decide(video, nil, subs, now)
	if !decision.Allowed {
		r.logger.Printf("access denied: user=%d video=%d reason=%s", userID, videoID, decision.Reason)
	}
	return decision, nil
}

// AnnotatedVideo pairs a catalog entry with the caller's entitlement.
type AnnotatedVideo struct {
	models.Video
	CanAccess bool `json:"can_access"`
}

// AnnotateCatalog computes CanAccess for every video in one pass. Grants
// are loaded as a set and subscriptions once, then each video goes through
// the same decision function ResolveAccess uses, so the two never diverge.
func (r *Resolver) AnnotateCatalog(ctx context.Context, userID uint, videos []models.Video) ([]AnnotatedVideo, error) {
	now := r.now()

	videoIDs := make([]uint, 0, len(videos))
	for i := range videos {
		videoIDs = append(videoIDs, videos[i].ID)
	}

	grants, err := r.store.GetActiveGrants(ctx, userID, videoIDs, now)
	if err != nil {
		return nil, err
	}

	subs, err := r.store.GetCurrentSubscriptions(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	annotated := make([]AnnotatedVideo, 0, len(videos))
	for i := range videos {
		decision := decide(&videos[i], grants[videos[i].ID], subs, now)
		annotated = append(annotated, AnnotatedVideo{
			Video:     videos[i],
			CanAccess: decision.Allowed,
		})
	}
	return annotated, nil
}

// decide is the single policy function behind both ResolveAccess and
// AnnotateCatalog. grant may be nil; subs may be empty.
func decide(video *models.Video, grant *models.VideoAccessGrant, subs []models.Subscription, now time.Time) Decision {
	if video.Status != models.VideoActive {
		return deny(ReasonVideoUnavailable)
	}

	if video.Tier == models.TierBasic {
		return allow(ReasonTierBasic)
	}

	if grant != nil && grant.IsUsable(now) {
		d := allow(ReasonExplicitGrant)
		d.MatchedGrantID = &grant.ID
		return d
	}

	best := bestSubscription(subs, now)
	if best == nil {
		return deny(ReasonNoSubscription)
	}

	if best.Plan.Tier.Covers(video.Tier) {
		d := allow(ReasonSubscriptionSufficient)
		d.MatchedSubscriptionID = &best.ID
		return d
	}
	return deny(ReasonTierInsufficient)
}

// bestSubscription picks the most permissive current subscription: highest
// plan tier, then latest end date. Holding more subscriptions can never
// reduce access.
func bestSubscription(subs []models.Subscription, now time.Time) *models.Subscription {
	var best *models.Subscription
	for i := range subs {
		s := &subs[i]
		if !s.IsCurrent(now) {
			continue
		}
		if best == nil {
			best = s
			continue
		}
		if s.Plan.Tier.Rank() > best.Plan.Tier.Rank() {
			best = s
		} else if s.Plan.Tier.Rank() == best.Plan.Tier.Rank() && s.EndsAt.After(best.EndsAt) {
			best = s
		}
	}
	return best
}

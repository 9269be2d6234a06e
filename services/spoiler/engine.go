package spoiler

import "watchdeck/models"

// Decision is the per-field visibility verdict for one release. Every
// rendering surface evaluates the same inputs and must agree, so Evaluate is
// deterministic and keeps no state between calls.
type Decision struct {
	ImageBlocked    bool `json:"imageBlocked"`
	TitleBlocked    bool `json:"titleBlocked"`
	OverviewBlocked bool `json:"overviewBlocked"`
	// UseBanner directs consumers to substitute the series banner for the
	// episode still. The still path is never used once the image is blocked
	// in banner mode, even at low resolution.
	UseBanner bool `json:"useBanner"`
}

// Blocked reports whether any field is hidden.
func (d Decision) Blocked() bool {
	return d.ImageBlocked || d.TitleBlocked || d.OverviewBlocked
}

// Evaluate computes the visibility decision for a release. interaction may be
// nil when the release has never been interacted with. Episodes are gated
// while unwatched; movies are gated only when the config opts them in.
// A reveal flag unblocks its field regardless of config.
func Evaluate(release models.Release, interaction *models.Interaction, cfg models.SpoilerConfig, reveal models.RevealState) Decision {
	watched := interaction != nil && interaction.IsWatched
	gated := !watched && (!release.IsMovie || cfg.IncludeMovies)
	if !gated {
		return Decision{}
	}

	decision := Decision{
		ImageBlocked:    cfg.Images && !reveal.Image,
		TitleBlocked:    cfg.Title && !reveal.Title,
		OverviewBlocked: cfg.Overview && !reveal.Overview,
	}
	decision.UseBanner = decision.ImageBlocked && cfg.ReplacementMode == models.ReplacementModeBanner
	return decision
}

// ImageURL picks the image a consumer should show for the release under the
// given decision. Blocked images in banner mode fall back to the series
// banner, then the poster; blur mode keeps the still and leaves the visual
// treatment to the consumer.
func ImageURL(release models.Release, decision Decision) string {
	if decision.UseBanner {
		if release.BannerURL != "" {
			return release.BannerURL
		}
		return release.PosterURL
	}
	if release.StillURL != "" {
		return release.StillURL
	}
	return release.PosterURL
}

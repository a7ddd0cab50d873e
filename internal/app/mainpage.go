package app

import "context"

// sectionSummary is one row of the site index and the admin dashboard.
type sectionSummary struct {
	Label        string
	Path         string
	Homepage     string
	SettingsPath string
	ItemsPath    string
}

// sectionSummaries resolves every type's homepage afresh.
func (s *Server) sectionSummaries(ctx context.Context) []sectionSummary {
	types := s.registry.Types()
	out := make([]sectionSummary, 0, len(types))
	for _, pt := range types {
		sum := sectionSummary{
			Label:        pt.Label,
			Path:         pt.ArchivePath(),
			SettingsPath: homepageSettingsPath(pt),
			ItemsPath:    "/admin/types/" + pt.Name + "/items",
		}
		if it, ok := Resolve(ctx, s.store, pt, s.selector.Homepage(ctx, pt), s.logger).Item(); ok {
			sum.Homepage = it.DisplayTitle()
		}
		out = append(out, sum)
	}
	return out
}

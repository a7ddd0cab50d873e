package app

// AdminLink is one entry of the admin bar.
type AdminLink struct {
	Label string
	Href  string
}

// AdminBar is drawn above public pages for an authenticated admin.
type AdminBar struct {
	User     string
	EditLink *AdminLink
	Links    []AdminLink
}

func editPath(id ItemID) string {
	return "/admin/items/" + id.String() + "/edit"
}

func homepageSettingsPath(pt PostType) string {
	return "/admin/types/" + pt.Name + "/homepage"
}

// ArchiveAdminBar points the edit shortcut at the resolved homepage. With
// no usable homepage the shortcut is left out.
func ArchiveAdminBar(user string, pt PostType, res Resolution) *AdminBar {
	if user == "" {
		return nil
	}
	bar := &AdminBar{
		User: user,
		Links: []AdminLink{
			{Label: "Dashboard", Href: "/admin/"},
			{Label: "Homepage settings", Href: homepageSettingsPath(pt)},
		},
	}
	if it, ok := res.Item(); ok {
		bar.EditLink = &AdminLink{
			Label: "Edit " + pt.Label + " homepage",
			Href:  withQuery(editPath(it.ID), "return_to", pt.ArchivePath()),
		}
	}
	return bar
}

// ItemAdminBar points the edit shortcut at the item being viewed.
func ItemAdminBar(user string, pt PostType, it Item, path string) *AdminBar {
	if user == "" {
		return nil
	}
	return &AdminBar{
		User: user,
		EditLink: &AdminLink{
			Label: "Edit " + it.DisplayTitle(),
			Href:  withQuery(editPath(it.ID), "return_to", path),
		},
		Links: []AdminLink{
			{Label: "Dashboard", Href: "/admin/"},
			{Label: pt.Label + " items", Href: "/admin/types/" + pt.Name + "/items"},
		},
	}
}

package prefs

import "errors"

const layoutKey = "pane_layout"

// PaneLayout records the pane arrangement the user last used.
type PaneLayout struct {
	SidebarWidth int    `json:"sidebar_width"`
	ListWidth    int    `json:"list_width"`
	ShowPreview  bool   `json:"show_preview"`
	SortBy       string `json:"sort_by"`
	SortDesc     bool   `json:"sort_desc"`
}

// DefaultLayout returns the layout used on first run.
func DefaultLayout() PaneLayout {
	return PaneLayout{
		SidebarWidth: 24,
		ListWidth:    48,
		ShowPreview:  true,
		SortBy:       "date",
		SortDesc:     true,
	}
}

// LoadLayout reads the saved pane layout, falling back to defaults on
// first run or when the stored blob cannot be decoded.
func (d *DB) LoadLayout() PaneLayout {
	var l PaneLayout
	if err := d.Get(layoutKey, &l); err != nil {
		if !errors.Is(err, ErrNotFound) {
			// Corrupt blob; start over rather than fail startup.
			_ = d.Delete(layoutKey)
		}
		return DefaultLayout()
	}
	if l.SidebarWidth <= 0 || l.ListWidth <= 0 {
		return DefaultLayout()
	}
	return l
}

// SaveLayout persists the pane layout.
func (d *DB) SaveLayout(l PaneLayout) error {
	return d.Set(layoutKey, l)
}

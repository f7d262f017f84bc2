package services

import "multistore/internal/models"

// NavItem is one entry of the admin sidebar.
type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

var adminNav = []NavItem{
	{Label: "Dashboard", Href: "/admin", Icon: "home"},
	{Label: "Orders", Href: "/admin/orders", Icon: "shopping-bag"},
	{Label: "Products", Href: "/admin/products", Icon: "box"},
	{Label: "Categories", Href: "/admin/categories", Icon: "tag"},
	{Label: "Customers", Href: "/admin/customers", Icon: "users"},
	{Label: "Shipping", Href: "/admin/shipping", Icon: "truck"},
	{Label: "Blog", Href: "/admin/blog", Icon: "file-text"},
	{Label: "Analytics", Href: "/admin/analytics", Icon: "bar-chart"},
	{Label: "Notifications", Href: "/admin/templates", Icon: "mail"},
	{Label: "Webhooks", Href: "/admin/webhooks", Icon: "link"},
	{Label: "Settings", Href: "/admin/settings", Icon: "settings"},
}

var platformNav = []NavItem{
	{Label: "Stores", Href: "/platform/stores", Icon: "layers"},
	{Label: "Plans", Href: "/platform/plans", Icon: "credit-card"},
}

// Sidebar returns the back office navigation for a role.
func Sidebar(role string) []NavItem {
	switch role {
	case models.RoleSuperAdmin:
		out := append([]NavItem{}, adminNav...)
		return append(out, platformNav...)
	case models.RoleAdmin:
		return append([]NavItem{}, adminNav...)
	default:
		return []NavItem{}
	}
}

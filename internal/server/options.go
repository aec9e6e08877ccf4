package web

// Option is one entry of a dropdown.
type Option struct {
	Code string
	Name string
}

// Regions lists the editions offered in the region dropdown, in display order.
var Regions = []Option{
	{"us", "United States"},
	{"gb", "United Kingdom"},
	{"au", "Australia"},
	{"ca", "Canada"},
	{"in", "India"},
	{"ie", "Ireland"},
	{"nz", "New Zealand"},
	{"sg", "Singapore"},
}

var Categories = []Option{
	{"general", "General"},
	{"business", "Business"},
	{"entertainment", "Entertainment"},
	{"health", "Health"},
	{"science", "Science"},
	{"sports", "Sports"},
	{"technology", "Technology"},
}

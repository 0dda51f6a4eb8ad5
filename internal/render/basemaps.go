package render

// Basemap is a selectable XYZ tile layer.
type Basemap struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// DefaultBasemaps lists the base layers offered by the layer switcher.
// The first entry is shown when the map opens.
var DefaultBasemaps = []Basemap{
	{
		Name:        "OpenStreetMap",
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	},
	{
		Name:        "OpenTopoMap",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenTopoMap contributors",
	},
	{
		Name:        "Thunderforest Outdoors",
		URL:         "https://{s}.tile.thunderforest.com/outdoors/{z}/{x}/{y}.png",
		Attribution: "&copy; Thunderforest",
	},
	{
		Name:        "Esri Satellite",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "&copy; Esri",
	},
	{
		Name:        "CartoDB Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
	},
	{
		Name:        "Google Satellite",
		URL:         "https://mt1.google.com/vt/lyrs=s&x={x}&y={y}&z={z}",
		Attribution: "&copy; Google",
	},
}

package render

// Color is a named marker colour.
type Color struct {
	Name string
	Hex  string
}

// Palette is cycled by track index.
var Palette = []Color{
	{Name: "red", Hex: "#d63e2a"},
	{Name: "blue", Hex: "#38aadd"},
	{Name: "green", Hex: "#72b026"},
	{Name: "purple", Hex: "#d252b9"},
	{Name: "orange", Hex: "#f69730"},
	{Name: "darkred", Hex: "#a23336"},
	{Name: "lightred", Hex: "#ff8e7f"},
	{Name: "beige", Hex: "#ffcb92"},
	{Name: "darkblue", Hex: "#0067a3"},
	{Name: "darkgreen", Hex: "#728224"},
	{Name: "cadetblue", Hex: "#436978"},
	{Name: "darkpurple", Hex: "#5b396b"},
	{Name: "white", Hex: "#ffffff"},
	{Name: "pink", Hex: "#ff91ea"},
	{Name: "lightblue", Hex: "#8adaff"},
	{Name: "lightgreen", Hex: "#bbf970"},
	{Name: "gray", Hex: "#575757"},
	{Name: "black", Hex: "#303030"},
	{Name: "lightgray", Hex: "#a3a3a3"},
}

// ColorFor returns the palette colour for the track at index, wrapping around.
func ColorFor(index int) Color {
	n := len(Palette)
	return Palette[((index%n)+n)%n]
}

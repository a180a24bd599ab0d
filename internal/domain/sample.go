package domain

// SampleCampus returns a small demonstration layout of five buildings on the
// Columbia University campus with seven candidate connections.
func SampleCampus() *GraphFragment {
	f := NewGraphFragment()

	buildings := []struct {
		id, name string
		lat, lng float64
	}{
		{"1", "Butler Library", 40.8064, -73.9631},
		{"2", "Low Memorial", 40.8087, -73.9624},
		{"3", "Pupin Hall", 40.8100, -73.9612},
		{"4", "Havemeyer Hall", 40.8093, -73.9620},
		{"5", "Uris Hall", 40.8091, -73.9605},
	}
	for _, b := range buildings {
		node := NewNode(b.id, b.name)
		node.SetLocation(b.lat, b.lng)
		f.AddNode(*node)
	}

	connections := []struct {
		source, target string
		weight         Weight
	}{
		{"1", "2", 250},
		{"1", "3", 400},
		{"2", "3", 180},
		{"2", "4", 120},
		{"3", "4", 100},
		{"3", "5", 90},
		{"4", "5", 150},
	}
	for _, c := range connections {
		f.AddEdge(*NewEdge(c.source, c.target, c.weight))
	}

	return f
}

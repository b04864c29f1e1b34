package cpm

// palette is the fixed set of bar colours handed to chart renderers.
var palette = []string{
	"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6",
	"#EC4899", "#06B6D4", "#84CC16", "#F97316", "#6366F1",
}

// TaskColor returns a stable hex colour for a task id: the byte sum of the
// id picks a palette entry.
func TaskColor(id string) string {
	sum := 0
	for i := 0; i < len(id); i++ {
		sum += int(id[i])
	}
	return palette[sum%len(palette)]
}

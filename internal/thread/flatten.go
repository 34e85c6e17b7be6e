package thread

// DefaultContextWindow is how many ancestor bodies a Row carries.
const DefaultContextWindow = 3

// Row is one comment in export form.
type Row struct {
	ID       string `json:"id" parquet:"id"`
	LinkID   string `json:"link_id" parquet:"link_id"`
	ParentID string `json:"parent_id" parquet:"parent_id"`
	Depth    int    `json:"depth" parquet:"depth"`
	Text     string `json:"text" parquet:"text"`
	Label    string `json:"label" parquet:"label"`
	// Context holds the bodies of the nearest ancestors, oldest first, so
	// the direct parent is last.
	Context []string `json:"context" parquet:"context,list"`
	Images  []string `json:"images" parquet:"images,list"`
}

// Flatten emits one Row per node in pre-order, tree by tree. Every row of
// a tree shares the root's id as its LinkID. window bounds the number of
// ancestor bodies per row; values below 0 are treated as 0.
func Flatten(f *Forest, window int) []Row {
	window = max(0, window)
	rows := make([]Row, 0, f.Len())
	f.Walk(func(v Visit) bool {
		anc := v.Ancestors[max(0, len(v.Ancestors)-window):]
		ctx := make([]string, len(anc))
		for i, a := range anc {
			ctx[i] = a.Body
		}
		images := v.Node.Images
		if images == nil {
			images = []string{}
		}
		rows = append(rows, Row{
			ID:       v.Node.ID,
			LinkID:   v.Root.ID,
			ParentID: v.Node.ParentID,
			Depth:    v.Depth,
			Text:     v.Node.Body,
			Label:    v.Node.Label,
			Context:  ctx,
			Images:   images,
		})
		return true
	})
	return rows
}

package models

// Rule is one node of the rules page. The list is served flat, ordered by
// Order then ID; the frontend builds the tree from ParentID.
type Rule struct {
	ID       int     `json:"id"`
	Title    string  `json:"titulo"`
	Content  *string `json:"contenido"`
	ParentID *int    `json:"parent_id"`
	Order    int     `json:"orden"`
}

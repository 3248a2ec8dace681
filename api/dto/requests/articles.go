// ABOUTME: Request DTOs for article and highlight API endpoints
// ABOUTME: Field tags carry the validation huma applies before handlers run

package requests

// SaveArticleRequest asks to save the page at URL
type SaveArticleRequest struct {
	URL string `json:"url" required:"true" format:"uri" example:"https://example.com/article" doc:"Page to extract and save"`
}

// TagRequest adds a tag to an article
type TagRequest struct {
	Tag string `json:"tag" required:"true" minLength:"1" maxLength:"64" doc:"Tag to add"`
}

// CreateHighlightRequest selects article text by rune offsets into its plain text
type CreateHighlightRequest struct {
	// Start is the offset of the first selected character
	Start int `json:"start" minimum:"0" doc:"Offset of the first selected character"`

	// End is the offset just past the last selected character
	End int `json:"end" minimum:"0" doc:"Offset just past the last selected character"`

	Color string `json:"color,omitempty" enum:"yellow,pink,sky,green" doc:"Highlight color, yellow when omitted"`
	Note  string `json:"note,omitempty" maxLength:"2000" doc:"Optional note"`
}

// UpdateHighlightRequest changes the color and/or note of a highlight
type UpdateHighlightRequest struct {
	Color *string `json:"color,omitempty" doc:"New color"`
	Note  *string `json:"note,omitempty" maxLength:"2000" doc:"New note; blank removes it"`
}

package entity

// PageSnapshot is the markup of an already-loaded page, captured for submission
// to the extraction service.
type PageSnapshot struct {
	URL   string
	Title string
	HTML  string
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

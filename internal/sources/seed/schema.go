package seed

// Library is the top-level structure of the seed file.
type Library struct {
	Records []Entry `yaml:"records"`
}

// Entry is one book in the seed file. Status accepts a symbolic name or a label.
type Entry struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author,omitempty"`
	Status      string `yaml:"status,omitempty"`
	CurrentPage int    `yaml:"current_page,omitempty"`
	TotalPages  *int   `yaml:"total_pages,omitempty"`
	Summary     string `yaml:"summary,omitempty"`
	Thoughts    string `yaml:"thoughts,omitempty"`
}

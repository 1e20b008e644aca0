package seed

// File is the top-level structure of the seed YAML file.
type File struct {
	Services []ServiceProps `yaml:"services"`
	Messages []MessageProps `yaml:"messages"`
}

// ServiceProps describes one seeded service. The id is derived from Name.
type ServiceProps struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Category     string   `yaml:"category"`
	Impact       string   `yaml:"impact"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Enabled      bool     `yaml:"enabled"`
}

// MessageProps describes one seeded message.
type MessageProps struct {
	Code     string `yaml:"code"`
	Message  string `yaml:"message"`
	Type     string `yaml:"type"`
	Platform string `yaml:"platform"`
	Enabled  bool   `yaml:"enabled"`
	Category string `yaml:"category"`
}

package script

// Line kind values accepted in authored scripts.
// An empty kind is inferred: lines carrying choices become choice nodes,
// everything else is a plain talk node.
const (
	// KindTalk is a spoken (or narrated) line.
	KindTalk = "talk"
	// KindEnter marks a talker joining the scene.
	KindEnter = "enter"
	// KindExit marks a talker leaving the scene.
	KindExit = "exit"
)

// Talker is a named speaker referenced by dialogue lines.
// Name is the unique lookup key; Asset is an opaque portrait/asset
// reference that the engine never interprets.
type Talker struct {
	Name  string `json:"name" yaml:"name"`
	Asset string `json:"asset,omitempty" yaml:"asset,omitempty"`
}

// Choice is a player-facing branch: display text plus the id of the line
// it leads to.
type Choice struct {
	Text string `json:"text" yaml:"text"`
	Next int    `json:"next" yaml:"next"`
}

// Line is one authored unit of dialogue, the flat pre-compilation form.
// IDs are author-assigned integers and must be unique within a script.
// Next is a pointer so that id 0 stays distinguishable from "no next".
type Line struct {
	ID      int      `json:"id" yaml:"id"`
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Talker  string   `json:"talker,omitempty" yaml:"talker,omitempty"`
	Kind    string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Next    *int     `json:"next,omitempty" yaml:"next,omitempty"`
	Start   bool     `json:"start,omitempty" yaml:"start,omitempty"`
	End     bool     `json:"end,omitempty" yaml:"end,omitempty"`
}

// Metadata is the optional free-form header block of a script document.
// Known keys fill the typed fields; any other key is kept verbatim in
// Extra. It is informational only; the compiler ignores it.
type Metadata struct {
	Title       string            `mapstructure:"title"`
	Description string            `mapstructure:"description"`
	Tags        []string          `mapstructure:"tags"`
	Extra       map[string]string `mapstructure:",remain"`
}

// Script is a full authored conversation document: the talker roster plus
// the ordered list of dialogue lines.
type Script struct {
	Meta    *Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
	Talkers []Talker  `json:"talkers,omitempty" yaml:"talkers,omitempty"`
	Lines   []Line    `json:"lines" yaml:"lines"`
}

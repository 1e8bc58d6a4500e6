package entry

// Entry represents one candidate produced by a channel
type Entry struct {
	Name   string // display string shown in the results list
	Output string // what confirm writes to stdout ("" means Name)
	Path   string // backing file for previews ("" if not file-addressed)
	Line   int    // 1-based line number within Path (0 if unaddressed)
}

// ConfirmOutput returns the string written to stdout when this entry
// is confirmed
func (e Entry) ConfirmOutput() string {
	if e.Output != "" {
		return e.Output
	}
	return e.Name
}

// HasFile reports whether the entry addresses a file on disk
func (e Entry) HasFile() bool {
	return e.Path != ""
}

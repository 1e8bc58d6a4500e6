package input

// ContextSnapshot implements the Context interface for the input
// handler. The model fills one per key event so the modes see a
// consistent picture even while ingestion keeps mutating the session.
type ContextSnapshot struct {
	Selected  int
	Results   int
	Total     int
	QueryText string
	Channel   string
	Channels  []string
}

// SelectedIndex returns the selected result row
func (c ContextSnapshot) SelectedIndex() int { return c.Selected }

// ResultCount returns the number of matched results
func (c ContextSnapshot) ResultCount() int { return c.Results }

// TotalCount returns the number of ingested candidates
func (c ContextSnapshot) TotalCount() int { return c.Total }

// Query returns the current query text
func (c ContextSnapshot) Query() string { return c.QueryText }

// ChannelName returns the active channel name
func (c ContextSnapshot) ChannelName() string { return c.Channel }

// ChannelNames returns every switchable channel name
func (c ContextSnapshot) ChannelNames() []string { return c.Channels }

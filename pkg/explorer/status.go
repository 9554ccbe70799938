package explorer

import "time"

// Level classifies a status message.
type Level string

const (
	LevelInfo Level = "info"
	LevelOK   Level = "ok"
	LevelWarn Level = "warn"
)

// Status is the transient message line.
type Status struct {
	Text    string    `json:"text"`
	Level   Level     `json:"level,omitempty"`
	Expires time.Time `json:"-"`
}

func (c *Controller) flash(level Level, text string) {
	c.status = Status{Text: text, Level: level, Expires: c.clock().Add(c.statusTimeout)}
	c.dirty = true
}

func (c *Controller) currentStatus() Status {
	if c.status.Text == "" || !c.clock().Before(c.status.Expires) {
		return Status{}
	}
	return c.status
}

// Status returns the message line, empty once it expired.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStatus()
}

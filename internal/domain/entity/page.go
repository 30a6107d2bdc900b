package entity

import "time"

type BrowserKind string

const (
	BrowserChrome  BrowserKind = "chrome"
	BrowserFirefox BrowserKind = "firefox"
)

type Key string

const (
	KeyEscape Key = "Escape"
	KeyEnter  Key = "Enter"
)

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

type ConsoleEntry struct {
	Level string
	Text  string
	Time  time.Time
}

func (e ConsoleEntry) IsError() bool {
	return e.Level == "error" || e.Level == "severe" || e.Level == "SEVERE"
}

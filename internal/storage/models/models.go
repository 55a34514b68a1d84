package models

import "time"

type Intent struct {
	ID   int64
	Name string
}

type Entity struct {
	ID       int64
	Name     string
	ParentID *int64
}

type Trigger struct {
	ID       int64
	Text     string
	Language string
	IntentID int64
}

// TriggerEntity is an annotated span of a trigger text. Curation-time
// validation guarantees 0 <= Start <= End <= len(text) and
// text[Start:End] == Value.
type TriggerEntity struct {
	ID        int64
	TriggerID int64
	EntityID  int64
	Start     int
	End       int
	Value     string
}

type Attribute struct {
	ID    int64
	Key   string
	Value *string
}

type Answer struct {
	ID       int64
	Text     string
	Language string
}

// NLURequest is the write-once audit record of one inference call.
type NLURequest struct {
	ID          string
	Params      string
	ModelOutput string
	Properties  string
	Answer      string
	LatencyMS   int
	CreatedAt   time.Time
}

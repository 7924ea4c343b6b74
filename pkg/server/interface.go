/*
Package server implements msgpack IPC for keyboard suggestion services.

The server reads a stream of msgpack requests from stdin and writes one
msgpack response per request to stdout. Messages are processed
synchronously with timing info included in suggestion responses.

# IPC

Each request carries an ID and an action. A suggest request describes the
taps of the word being typed; every key holds the pressed character and,
optionally, the neighboring characters it may have meant:

	{"id": "r1", "action": "suggest", "keys": [{"c": "q", "n": "wa"}, {"c": "e", "n": "wrsd"}]}

When "n" is empty the server fills it from the proximity layout of the
current language. The response lists candidates best first:

	{"id": "r1", "s": [{"w": "we", "sc": 720, "c": 1}], "typed": "qe", "valid": false, "corr": true, "best": "we", "t": 85}

"corr" tells the caller a correction may be applied on its own and "best"
is the word to commit on a separator.

User dictionary and engine state are managed with small actions:

	{"id": "r2", "action": "add", "word": "ένα", "freq": 128}
	{"id": "r3", "action": "accept", "word": "γεια"}
	{"id": "r4", "action": "remove", "word": "ένα"}
	{"id": "r5", "action": "valid", "word": "και"}
	{"id": "r6", "action": "mode", "mode": "full"}
	{"id": "r7", "action": "lang", "lang": "en"}
	{"id": "r8", "action": "health"}

Failures produce {"id": ..., "e": "message", "code": 400}.
*/
package server

// Actions understood by the server.
const (
	ActionSuggest = "suggest"
	ActionValid   = "valid"
	ActionAdd     = "add"
	ActionAccept  = "accept"
	ActionRemove  = "remove"
	ActionMode    = "mode"
	ActionLang    = "lang"
	ActionHealth  = "health"
)

// Key is one tap: the pressed character and its neighbors.
type Key struct {
	Char      string `msgpack:"c"`
	Neighbors string `msgpack:"n,omitempty"`
}

// Request is any client message.
type Request struct {
	ID          string `msgpack:"id"`
	Action      string `msgpack:"action"`
	Keys        []Key  `msgpack:"keys,omitempty"`
	Capitalized bool   `msgpack:"cap,omitempty"`
	Mode        string `msgpack:"mode,omitempty"`
	Limit       int    `msgpack:"limit,omitempty"`
	Word        string `msgpack:"word,omitempty"`
	Freq        int    `msgpack:"freq,omitempty"`
	Lang        string `msgpack:"lang,omitempty"`
}

// Suggestion - minimal suggestion entry
type Suggestion struct {
	Word        string `msgpack:"w"`
	Score       int    `msgpack:"sc"`
	Corrections int    `msgpack:"c,omitempty"`
	User        bool   `msgpack:"u,omitempty"`
}

// SuggestResponse answers a suggest request.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Typed       string       `msgpack:"typed"`
	Valid       bool         `msgpack:"valid"`
	Corrected   bool         `msgpack:"corr"`
	Best        string       `msgpack:"best"`
	TimeTaken   int64        `msgpack:"t"`
}

// StatusResponse answers every other action.
type StatusResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Valid  *bool          `msgpack:"valid,omitempty"`
	Result string         `msgpack:"result,omitempty"`
	Mode   string         `msgpack:"mode,omitempty"`
	Lang   string         `msgpack:"lang,omitempty"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"code"`
}

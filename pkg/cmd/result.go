package cmd

import (
	"encoding/json"
	"io"
)

// Result is the envelope every subcommand prints on stdout, the contract the
// ansible wrapper modules parse.
type Result struct {
	Changed bool `json:"changed"`
	// Token is the minted AccessToken document or static link content.
	Token string `json:"token,omitempty"`
	// Path is the namespace home or the produced bundle file.
	Path string `json:"path,omitempty"`
	// Bundle is the base64 encoded bundle content.
	Bundle string `json:"bundle,omitempty"`
}

func (r Result) Print(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

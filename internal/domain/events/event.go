// Package events provides event types
package events

// ControlChange describes one control change reported by a client. Checked
// is a pointer so a change to a text value doesn't clobber a checkbox state.
type ControlChange struct {
	Name    string `json:"name" binding:"required"`
	Value   string `json:"value"`
	Checked *bool  `json:"checked,omitempty"`
}

// EffectUpdate describes one computed effect change for an element,
// returned to the caller and broadcast to the session's websocket stream
type EffectUpdate struct {
	ElementID string `json:"elementId"`
	Effect    string `json:"effect"`
	Display   string `json:"display,omitempty"`
	Disabled  *bool  `json:"disabled,omitempty"`
}

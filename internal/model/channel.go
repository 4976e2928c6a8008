package model

// Channel represents a YouTube channel row, keyed by the channel's natural ID.
// Name and URL may change over time and are refreshed on every sighting.
type Channel struct {
	ChannelID string `json:"channelId"`
	Name      string `json:"name"`
	URL       string `json:"url"`
}

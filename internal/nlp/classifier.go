package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// LabelExcept is the sentinel stored when classification was skipped or
// failed for any reason.
const LabelExcept = "EXCEPT"

// maxTokens is the truncation length sent to the model servers.
const maxTokens = 512

var sentimentLabels = map[int]string{
	0: "POSITIVE",
	1: "NEGATIVE",
}

var speechActLabels = map[int]string{
	0: "INFO",
	1: "QUESTION",
	2: "EMOTION",
	3: "CRITICISM",
	4: "REQUEST",
	5: "ETC",
}

// Prediction holds the two labels produced for one comment.
type Prediction struct {
	Sentiment string `json:"sentiment"`
	SpeechAct string `json:"speechAct"`
}

// Classifier calls two pre-trained sequence-classification model servers
// (sentiment and speech-act) and maps their argmax class index to a label.
//
// It is built once at process start. If either model server is unconfigured
// or fails its startup probe, the classifier stays permanently disabled and
// every Predict call returns the EXCEPT sentinel instead of an error — one
// bad comment or a dead model server must never abort a crawl batch.
type Classifier struct {
	client       *http.Client
	sentimentURL string
	speechActURL string
	disabled     bool
}

type inferRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

type inferResponse struct {
	Logits []float64 `json:"logits"`
}

// NewClassifier probes both model servers. Empty URLs or failed probes
// disable classification for the life of the process.
func NewClassifier(sentimentURL, speechActURL string) *Classifier {
	c := &Classifier{
		client:       &http.Client{Timeout: 30 * time.Second},
		sentimentURL: sentimentURL,
		speechActURL: speechActURL,
	}

	if sentimentURL == "" || speechActURL == "" {
		log.Warn().Msg("classifier: model server URL not configured, classification disabled")
		c.disabled = true
		return c
	}

	for _, url := range []string{sentimentURL, speechActURL} {
		if err := c.probe(url); err != nil {
			log.Error().Err(err).Str("url", url).Msg("classifier: model server probe failed, classification disabled")
			c.disabled = true
			return c
		}
	}

	log.Info().Msg("classifier: sentiment and speech-act model servers ready")
	return c
}

// Disabled reports whether the classifier is in the permanently-disabled state.
func (c *Classifier) Disabled() bool {
	return c.disabled
}

func (c *Classifier) probe(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server health returned %d", resp.StatusCode)
	}
	return nil
}

// Predict classifies one prefixed comment. It never returns an error: any
// transport failure, malformed response or unknown class index degrades to
// the EXCEPT sentinel for both labels.
func (c *Classifier) Predict(ctx context.Context, text string) Prediction {
	pred := Prediction{Sentiment: LabelExcept, SpeechAct: LabelExcept}
	if c.disabled {
		return pred
	}

	if idx, err := c.infer(ctx, c.sentimentURL, text); err != nil {
		log.Warn().Err(err).Msg("classifier: sentiment inference failed")
	} else if label, ok := sentimentLabels[idx]; ok {
		pred.Sentiment = label
	}

	if idx, err := c.infer(ctx, c.speechActURL, text); err != nil {
		log.Warn().Err(err).Msg("classifier: speech-act inference failed")
	} else if label, ok := speechActLabels[idx]; ok {
		pred.SpeechAct = label
	}

	return pred
}

// infer posts the text to one model server and returns the argmax index of
// the returned class distribution.
func (c *Classifier) infer(ctx context.Context, url, text string) (int, error) {
	body, err := json.Marshal(inferRequest{Text: text, MaxLength: maxTokens})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("model server returned %d", resp.StatusCode)
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Logits) == 0 {
		return 0, fmt.Errorf("model server returned empty logits")
	}

	return argmax(out.Logits), nil
}

func argmax(logits []float64) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}

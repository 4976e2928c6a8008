package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// modelServer fakes one model server with a health endpoint and fixed logits.
func modelServer(t *testing.T, logits []float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		var req inferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(inferResponse{Logits: logits})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPredictMapsArgmaxToLabels(t *testing.T) {
	sentiment := modelServer(t, []float64{0.2, 1.7})       // argmax 1 -> NEGATIVE
	speechAct := modelServer(t, []float64{0, 0, 0, 0, 5, 0}) // argmax 4 -> REQUEST

	c := NewClassifier(sentiment.URL, speechAct.URL)
	if c.Disabled() {
		t.Fatal("classifier unexpectedly disabled")
	}

	pred := c.Predict(context.Background(), "음악: 좋아요")
	if pred.Sentiment != "NEGATIVE" {
		t.Errorf("Sentiment = %q, want NEGATIVE", pred.Sentiment)
	}
	if pred.SpeechAct != "REQUEST" {
		t.Errorf("SpeechAct = %q, want REQUEST", pred.SpeechAct)
	}
}

func TestPredictDisabledReturnsSentinel(t *testing.T) {
	c := NewClassifier("", "")
	if !c.Disabled() {
		t.Fatal("classifier with no URLs should be disabled")
	}

	pred := c.Predict(context.Background(), "기타: 좋아요")
	if pred.Sentiment != LabelExcept || pred.SpeechAct != LabelExcept {
		t.Errorf("disabled Predict = %+v, want both %q", pred, LabelExcept)
	}
}

func TestPredictFailedProbeDisables(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := modelServer(t, []float64{1, 0})

	c := NewClassifier(down.URL, up.URL)
	if !c.Disabled() {
		t.Fatal("classifier should be disabled after a failed probe")
	}

	pred := c.Predict(context.Background(), "기타: 좋아요")
	if pred.Sentiment != LabelExcept || pred.SpeechAct != LabelExcept {
		t.Errorf("Predict after failed probe = %+v, want both %q", pred, LabelExcept)
	}
}

func TestPredictServerErrorDegradesToSentinel(t *testing.T) {
	healthyThenFailing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer healthyThenFailing.Close()
	ok := modelServer(t, []float64{2, 1})

	c := NewClassifier(healthyThenFailing.URL, ok.URL)
	pred := c.Predict(context.Background(), "기타: 좋아요")

	if pred.Sentiment != LabelExcept {
		t.Errorf("Sentiment = %q, want %q after server error", pred.Sentiment, LabelExcept)
	}
	// The other model still answers; a single failing model must not take
	// down the whole prediction.
	if pred.SpeechAct != "INFO" {
		t.Errorf("SpeechAct = %q, want INFO", pred.SpeechAct)
	}
}

func TestPredictUnknownIndexIsSentinel(t *testing.T) {
	sentiment := modelServer(t, []float64{0, 0, 9}) // argmax 2, outside the label table
	speechAct := modelServer(t, []float64{1, 0, 0, 0, 0, 0})

	c := NewClassifier(sentiment.URL, speechAct.URL)
	pred := c.Predict(context.Background(), "기타: 좋아요")

	if pred.Sentiment != LabelExcept {
		t.Errorf("Sentiment = %q, want %q for out-of-range index", pred.Sentiment, LabelExcept)
	}
	if pred.SpeechAct != "INFO" {
		t.Errorf("SpeechAct = %q, want INFO", pred.SpeechAct)
	}
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		logits []float64
		want   int
	}{
		{[]float64{0.1}, 0},
		{[]float64{0.1, 0.9}, 1},
		{[]float64{3, 1, 2}, 0},
		{[]float64{-5, -1, -3}, 1},
	}

	for _, tt := range tests {
		if got := argmax(tt.logits); got != tt.want {
			t.Errorf("argmax(%v) = %d, want %d", tt.logits, got, tt.want)
		}
	}
}

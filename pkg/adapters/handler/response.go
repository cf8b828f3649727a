package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError turns any error into a JSON body. Only catalog messages reach
// the client; causes are logged.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		logger.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": domain.MsgInternalServerError})
		return
	}

	status := de.Kind.Status()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(de))
	}

	if de.List || len(de.Messages) > 1 {
		writeJSON(w, status, map[string][]string{"errors": de.Messages})
		return
	}
	msg := domain.MsgInternalServerError
	if len(de.Messages) == 1 {
		msg = de.Messages[0]
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// scalar accepts a JSON number or string and keeps its text, so that bad
// values can be reported by validation instead of failing the decode.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case json.Number:
		*s = scalar(t.String())
	case string:
		*s = scalar(t)
	case bool:
		*s = scalar(strconv.FormatBool(t))
	default:
		*s = scalar(b)
	}
	return nil
}

func (s *scalar) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func SendJSON(w http.ResponseWriter, statusCode int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, statusCode int, v any) {
	if err := SendJSON(w, statusCode, v); err != nil {
		log.WithError(err).WithField("response", v).Error("unable to send response")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func (h *GameHandler) badRequest(w http.ResponseWriter, err error) {
	sendJSONOrLog(w, h.log, http.StatusBadRequest, wrapError(err))
}

func (h *GameHandler) unauthorized(w http.ResponseWriter, err error) {
	sendJSONOrLog(w, h.log, http.StatusUnauthorized, wrapError(err))
}

func (h *GameHandler) notFound(w http.ResponseWriter, err error) {
	sendJSONOrLog(w, h.log, http.StatusNotFound, wrapError(err))
}

func (h *GameHandler) internalError(w http.ResponseWriter, err error, msg string) {
	h.log.WithError(err).Error(msg)
	sendJSONOrLog(w, h.log, http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}

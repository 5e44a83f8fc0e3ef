package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/ledger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// writeError maps ledger errors to status codes.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		writeBadRequest(w, verr.Message)
	case errors.Is(err, ledger.ErrNotAvailable):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No encontrado"})
	case errors.Is(err, ledger.ErrInsufficientUnits):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "No hay suficientes unidades disponibles"})
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error interno"})
	}
}

// decode reads a JSON body into dst and validates its tags.
func (s *server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeBadRequest(w, "Cuerpo JSON inválido")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeBadRequest(w, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Datos inválidos"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", fe.Field())
	case "gt":
		return fmt.Sprintf("%s debe ser mayor a %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s debe ser mayor o igual a %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s excede el máximo de %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s es inválido", fe.Field())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "id inválido")
		return 0, false
	}
	return id, true
}

// queryDate parses a YYYY-MM-DD query parameter, falling back to fallback when absent.
func queryDate(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s debe tener formato AAAA-MM-DD", key)
	}
	return d, nil
}

// queryInt parses an integer query parameter that must be at least lo,
// falling back to fallback when absent.
func queryInt(r *http.Request, key string, fallback, lo int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo {
		return 0, fmt.Errorf("%s debe ser un entero mayor o igual a %d", key, lo)
	}
	return n, nil
}

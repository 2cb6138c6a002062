package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/league"
	"github.com/antoniorme/minis-padel/middleware"
	"github.com/antoniorme/minis-padel/services" // Импортируем для маппинга ошибок сервисов
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Паника, т.к. это ошибка программиста (передан не указатель)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// readOptionalJSON как readJSON, но пустое тело допустимо.
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.ContentLength == 0 {
		return nil
	}
	return readJSON(w, r, dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

// respond пишет JSON-ответ и логирует ошибку записи.
func respond(w http.ResponseWriter, r *http.Request, status int, data jsonResponse) {
	if err := writeJSON(w, status, data, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	err := writeJSON(w, status, env, nil)
	if err != nil {
		slog.Default().Error("error writing error JSON response", slog.String("path", r.URL.Path), slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Default().Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}

	return id, nil
}

// urlIDs читает несколько числовых параметров пути; при ошибке уже отвечает 400.
func urlIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	ids := make([]int, len(names))
	for i, name := range names {
		id, err := getIDFromURL(r, name)
		if err != nil {
			badRequestResponse(w, r, err)
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// organizerID извлекает id организатора из токена; при ошибке уже отвечает 401.
func organizerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, false
	}
	return id, true
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя и движка в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Не найдено
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrOrganizerNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrPairNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrLeagueNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		notFoundResponse(w, r)

	// Конфликты состояния: действие заблокировано, данные не изменены
	case errors.Is(err, services.ErrEmailConflict),
		errors.Is(err, services.ErrTournamentNotInSetup),
		errors.Is(err, services.ErrTournamentNotFinished),
		errors.Is(err, services.ErrTournamentArchived),
		errors.Is(err, services.ErrMatchAlreadyFinished),
		errors.Is(err, services.ErrMatchAwaitingPair),
		errors.Is(err, services.ErrPlayerAlreadyPaired),
		errors.Is(err, services.ErrPairNotSolo),
		errors.Is(err, services.ErrPairRejected),
		errors.Is(err, services.ErrPairInUse),
		errors.Is(err, services.ErrPlayerInUse),
		errors.Is(err, services.ErrCategoryState),
		errors.Is(err, brackets.ErrInsufficientPairs),
		errors.Is(err, brackets.ErrIncompleteRound),
		errors.Is(err, brackets.ErrTournamentNotActive):
		conflictResponse(w, r, err.Error())

	// Невалидные данные
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrTiedScore),
		errors.Is(err, brackets.ErrUnsupportedFormat),
		errors.Is(err, brackets.ErrPlayoffSize),
		errors.Is(err, league.ErrInvalidGroupCount),
		errors.Is(err, league.ErrInvalidQualifiers),
		errors.Is(err, league.ErrInvalidLegs),
		errors.Is(err, league.ErrInvalidCrossType):
		badRequestResponse(w, r, err)

	// Ошибки авторизации/доступа
	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())

	// История матчей не укладывается в шаблон формата: данные повреждены
	case errors.Is(err, brackets.ErrUnrecognizedScheduleShape):
		slog.Default().Error("tournament state cannot be reconstructed", slog.String("path", r.URL.Path), slog.Any("error", err))
		errorResponse(w, r, http.StatusInternalServerError, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

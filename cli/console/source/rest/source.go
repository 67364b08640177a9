package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/response"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

const requestIDHeader = "X-Request-ID"

// Source HTTP-клиент бэкенда трекера. Куки сессии хранятся в jar и
// отправляются с каждым запросом.
type Source struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) (*Source, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("некорректный адрес бэкенда %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("неподдерживаемая схема адреса бэкенда: %q", u.Scheme)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать хранилище cookie: %w", err)
	}

	return &Source{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (s *Source) endpoint(path string, query url.Values) string {
	u := *s.baseURL
	u.Path = s.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (s *Source) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path, query), reader)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.WithFields(log.Fields{"method": method, "path": path, "request_id": requestID}).Trace("Запрос к бэкенду")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, statusError(resp)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	statusErr := &source.StatusError{Code: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(data) > 0 {
		var body response.Error
		if json.Unmarshal(data, &body) == nil {
			statusErr.Message = body.Text()
		}
	}
	return statusErr
}

func (s *Source) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := s.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: ошибка разбора ответа: %w", path, err)
	}
	return nil
}

func (s *Source) send(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	resp, err := s.do(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: ошибка разбора ответа: %w", method, path, err)
	}
	return nil
}

func vehiclePath(vehicleID int32, rest string) string {
	return "/api/vehicles/" + strconv.FormatInt(int64(vehicleID), 10) + rest
}

func windowQuery(window types.HistoryWindow) url.Values {
	return url.Values{"hours": []string{window.String()}}
}

func (s *Source) GetVehicles(ctx context.Context) ([]model.Vehicle, error) {
	vehicles := []model.Vehicle{}
	if err := s.getJSON(ctx, "/api/vehicles", nil, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *Source) GetLastLocation(ctx context.Context, vehicleID int32) (model.LocationSample, error) {
	var location *model.LocationSample
	if err := s.getJSON(ctx, vehiclePath(vehicleID, "/location"), nil, &location); err != nil {
		return model.LocationSample{}, err
	}
	if location == nil {
		return model.LocationSample{}, source.ErrNotFound
	}
	return *location, nil
}

func (s *Source) GetHistory(ctx context.Context, vehicleID int32, window types.HistoryWindow) ([]model.LocationSample, error) {
	history := []model.LocationSample{}
	if err := s.getJSON(ctx, vehiclePath(vehicleID, "/history"), windowQuery(window), &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Source) GetSavedLocations(ctx context.Context, vehicleID int32) ([]model.SavedLocation, error) {
	saved := []model.SavedLocation{}
	if err := s.getJSON(ctx, vehiclePath(vehicleID, "/saved-locations"), nil, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Source) UpdateSavedLocation(ctx context.Context, vehicleID, locationID int32, update request.UpdateSavedLocation) error {
	path := vehiclePath(vehicleID, "/saved-locations/"+strconv.FormatInt(int64(locationID), 10))
	return s.send(ctx, http.MethodPut, path, update, nil)
}

func (s *Source) DeleteSavedLocation(ctx context.Context, vehicleID, locationID int32) error {
	path := vehiclePath(vehicleID, "/saved-locations/"+strconv.FormatInt(int64(locationID), 10))
	return s.send(ctx, http.MethodDelete, path, nil, nil)
}

func (s *Source) GetPlaces(ctx context.Context) ([]model.PlaceOfInterest, error) {
	places := []model.PlaceOfInterest{}
	if err := s.getJSON(ctx, "/api/places-of-interest", nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (s *Source) CreatePlace(ctx context.Context, place request.CreatePlace) (int32, error) {
	var created response.CreatePlace
	if err := s.send(ctx, http.MethodPost, "/api/places-of-interest", place, &created); err != nil {
		return 0, err
	}
	return created.Place.ID, nil
}

func (s *Source) UpdatePlace(ctx context.Context, placeID int32, update request.UpdatePlace) error {
	return s.send(ctx, http.MethodPut, "/api/places-of-interest/"+strconv.FormatInt(int64(placeID), 10), update, nil)
}

func (s *Source) DeletePlace(ctx context.Context, placeID int32) error {
	return s.send(ctx, http.MethodDelete, "/api/places-of-interest/"+strconv.FormatInt(int64(placeID), 10), nil, nil)
}

func (s *Source) Geocode(ctx context.Context, address string) ([]model.SearchResult, error) {
	results := []model.SearchResult{}
	if err := s.getJSON(ctx, "/api/geocode", url.Values{"address": []string{address}}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Source) GetStats(ctx context.Context, vehicleID int32, window types.HistoryWindow) (model.VehicleStats, error) {
	var stats model.VehicleStats
	if err := s.getJSON(ctx, vehiclePath(vehicleID, "/stats"), windowQuery(window), &stats); err != nil {
		return model.VehicleStats{}, err
	}
	return stats, nil
}

func (s *Source) Export(ctx context.Context, vehicleID int32, window types.HistoryWindow, format types.ExportFormat, w io.Writer) error {
	query := windowQuery(window)
	query.Set("format", string(format))

	resp, err := s.do(ctx, http.MethodGet, vehiclePath(vehicleID, "/export"), query, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("ошибка выгрузки транспорта %d: %w", vehicleID, err)
	}
	return nil
}

func (s *Source) Login(ctx context.Context, credentials request.Login) (model.User, error) {
	var resp response.Login
	if err := s.send(ctx, http.MethodPost, "/api/auth/login", credentials, &resp); err != nil {
		return model.User{}, err
	}
	if resp.User == nil {
		return model.User{}, fmt.Errorf("бэкенд не вернул пользователя")
	}
	return *resp.User, nil
}

func (s *Source) Check(ctx context.Context) (*model.User, error) {
	var resp response.AuthCheck
	if err := s.getJSON(ctx, "/api/auth/check", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Authenticated {
		return nil, nil
	}
	return resp.User, nil
}

func (s *Source) Logout(ctx context.Context) error {
	return s.send(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// PostFix отправляет навигационную отметку в приёмник /api/gps.
func (s *Source) PostFix(ctx context.Context, fix request.GPSFix) error {
	return s.send(ctx, http.MethodPost, "/api/gps", fix, nil)
}

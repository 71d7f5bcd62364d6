package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"visa_referral/internal/model"
	"visa_referral/internal/service"
)

const endpointNotFound = "Endpoint not found"

// Request is one call into the mock backend.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Handler serves requests for one domain.
type Handler interface {
	HandleRequest(ctx context.Context, req Request) (*model.APIResponse[any], error)
}

type call struct {
	Path   string
	Params map[string]string
	Query  url.Values
	Body   []byte
	Header http.Header
}

func (c *call) bind(dst any) error {
	if len(c.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Body, dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (c *call) bearer() string {
	if c.Header == nil {
		return ""
	}
	token, ok := strings.CutPrefix(c.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

type routeFunc func(ctx context.Context, c *call) (data any, message string, err error)

type route struct {
	method  string
	pattern string
	status  int
	// reject routes surface failures as errors instead of a success:false envelope
	reject bool
	fn     routeFunc
}

// router matches method and path against an ordered route table.
type router struct {
	routes []route
}

func (r *router) handle(ctx context.Context, req Request) (*model.APIResponse[any], error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return model.NewErrorResponse(endpointNotFound, http.StatusBadRequest), nil
	}
	method := strings.ToUpper(req.Method)
	path := strings.TrimSuffix(u.Path, "/")

	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		params, ok := matchPath(rt.pattern, path)
		if !ok {
			continue
		}
		c := &call{Path: path, Params: params, Query: u.Query(), Body: req.Body, Header: req.Header}
		data, message, err := rt.fn(ctx, c)
		if err != nil {
			if rt.reject {
				return nil, asAPIError(err, path)
			}
			return model.NewErrorResponse(err.Error(), http.StatusBadRequest), nil
		}
		status := rt.status
		if status == 0 {
			status = http.StatusOK
		}
		return model.NewAPIResponse[any](data, message, status), nil
	}
	return model.NewErrorResponse(endpointNotFound, http.StatusBadRequest), nil
}

// matchPath compares a pattern such as /users/:id/referrals with a concrete path.
func matchPath(pattern, path string) (map[string]string, bool) {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func asAPIError(err error, path string) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	apiErr = model.NewAPIError(err.Error(), service.HTTPStatus(err), path)
	apiErr.Cause = err
	return apiErr
}

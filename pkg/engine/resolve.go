package engine

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/injesh/injesh/pkg/ierrors"
)

type containerListItem struct {
	ID string `json:"Id"`
}

type graphDriverData struct {
	LowerDir  string `json:"LowerDir"`
	UpperDir  string `json:"UpperDir"`
	MergedDir string `json:"MergedDir"`
	WorkDir   string `json:"WorkDir"`
}

type graphDriver struct {
	Name string          `json:"Name"`
	Data graphDriverData `json:"Data"`
}

type containerInspect struct {
	GraphDriver graphDriver `json:"GraphDriver"`
}

// ResolveTarget implements spec.md §4.2's resolve_target: the token is
// tried first as an id (verified by a /proc probe), falling back to a
// name-filter lookup that must yield exactly one container.
func (e *DockerEngine) ResolveTarget(nameOrID string) (Target, error) {
	id, err := e.resolveID(nameOrID)
	if err != nil {
		return Target{}, err
	}

	inspect, err := e.inspect(id)
	if err != nil {
		return Target{}, err
	}

	if inspect.GraphDriver.Name != "overlay2" {
		return Target{}, ierrors.New(ierrors.KindGraphDriverNotOverlay2, "graph driver is "+inspect.GraphDriver.Name)
	}

	pid, err := e.FindContainerInitPID(id)
	if err != nil {
		return Target{}, err
	}

	data := inspect.GraphDriver.Data
	return Target{
		ID:        id,
		InitPID:   pid,
		LowerDir:  data.LowerDir,
		UpperDir:  data.UpperDir,
		WorkDir:   data.WorkDir,
		MergedDir: data.MergedDir,
	}, nil
}

// resolveID treats nameOrID first as an id, probing /proc for a matching
// supervisor; on failure it falls back to name-lookup.
func (e *DockerEngine) resolveID(nameOrID string) (string, error) {
	id := truncateID(nameOrID)
	if _, err := e.FindContainerInitPID(id); err == nil {
		return id, nil
	}

	return e.resolveIDByName(nameOrID)
}

func (e *DockerEngine) resolveIDByName(name string) (string, error) {
	filters := `{"name":["` + name + `"]}`
	query := url.Values{"all": {"true"}, "filters": {filters}}

	resp, err := e.request("GET", "/containers/json", query)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classify(resp)
	}

	var items []containerListItem
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		return "", ierrors.Wrap(ierrors.KindInvalidResponse, err, "decoding container list")
	}

	if len(items) != 1 {
		return "", ierrors.New(ierrors.KindContainerNotFound, "name filter matched "+strconv.Itoa(len(items))+" containers")
	}

	return truncateID(items[0].ID), nil
}

func (e *DockerEngine) inspect(id string) (containerInspect, error) {
	resp, err := e.request("GET", "/containers/"+id+"/json", nil)
	if err != nil {
		return containerInspect{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return containerInspect{}, classify(resp)
	}

	var inspect containerInspect
	if err := json.Unmarshal(resp.Body, &inspect); err != nil {
		return containerInspect{}, ierrors.Wrap(ierrors.KindInvalidResponse, err, "decoding container inspect")
	}
	return inspect, nil
}

// Restart asks the engine to restart t's container and returns t
// unmodified; the caller must subsequently refresh InitPID since restart
// changes it (spec.md §4.2).
func (e *DockerEngine) Restart(t Target) (Target, error) {
	resp, err := e.request("POST", "/containers/"+t.ID+"/restart", nil)
	if err != nil {
		return t, err
	}

	switch resp.StatusCode {
	case 200, 204:
		return t, nil
	case 404:
		return t, ierrors.New(ierrors.KindContainerNotFound, "container not found")
	case 500:
		return t, ierrors.New(ierrors.KindAPIServerError, "engine returned a server error")
	default:
		return t, ierrors.New(ierrors.KindInvalidResponse, "unexpected restart status code")
	}
}

func truncateID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

package service

import (
	"context"
	"errors"
	"sync"

	"Critterly-App/internal/domain/model"
)

// fakeGeocoder 住所→座標の固定表。gateを設定した住所はチャネルが閉じられるまで完了しない
type fakeGeocoder struct {
	mu        sync.Mutex
	coords    map[string]model.LatLng
	gates     map[string]chan struct{}
	calls     []string
	completed []string
}

func newFakeGeocoder(coords map[string]model.LatLng) *fakeGeocoder {
	return &fakeGeocoder{coords: coords, gates: make(map[string]chan struct{})}
}

func (f *fakeGeocoder) gate(address string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[address] = ch
	return ch
}

func (f *fakeGeocoder) Resolve(ctx context.Context, address string) (model.LatLng, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	gate := f.gates[address]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, address)
	coord, ok := f.coords[address]
	if !ok {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}
	return coord, nil
}

func (f *fakeGeocoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGeocoder) completionOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.completed...)
}

// recordingSurface 呼び出しを記録するMapSurface
type recordingSurface struct {
	mu         sync.Mutex
	initErr    error
	placeErr   error
	center     model.LatLng
	zoom       int
	markers    map[string]*model.Marker
	open       map[string]bool
	handlers   map[string]func()
	overlay    []*model.Marker
	maxOpen    int
	initCalled bool
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{
		markers:  make(map[string]*model.Marker),
		open:     make(map[string]bool),
		handlers: make(map[string]func()),
	}
}

func (s *recordingSurface) Init(ctx context.Context, center model.LatLng, zoom int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalled = true
	if s.initErr != nil {
		return s.initErr
	}
	s.center = center
	s.zoom = zoom
	return nil
}

func (s *recordingSurface) SetCenter(center model.LatLng) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = center
}

func (s *recordingSurface) SetZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
}

func (s *recordingSurface) PlaceMarker(marker *model.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placeErr != nil {
		return s.placeErr
	}
	s.markers[marker.ID] = marker
	return nil
}

func (s *recordingSurface) ClearMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = make(map[string]*model.Marker)
	s.handlers = make(map[string]func())
}

func (s *recordingSurface) OpenPopup(windowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[windowID] = true
	n := 0
	for _, o := range s.open {
		if o {
			n++
		}
	}
	if n > s.maxOpen {
		s.maxOpen = n
	}
}

func (s *recordingSurface) ClosePopup(windowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, windowID)
}

func (s *recordingSurface) OnMarkerClick(markerID string, handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[markerID] = handler
}

func (s *recordingSurface) SetClusterOverlay(markers []*model.Marker, options model.ClusterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = append([]*model.Marker(nil), markers...)
}

func (s *recordingSurface) ClearClusterOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
}

func (s *recordingSurface) click(markerID string) {
	s.mu.Lock()
	h := s.handlers[markerID]
	s.mu.Unlock()
	if h != nil {
		h()
	}
}

func (s *recordingSurface) markerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

func (s *recordingSurface) openCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

var errSurfaceUnavailable = errors.New("surface unavailable")

var (
	addr1 = model.LatLng{Lat: 42.05, Lng: -87.67}
	addr2 = model.LatLng{Lat: 42.06, Lng: -87.68}
)

func samplePosts() []*model.Post {
	return []*model.Post{
		{ID: "p1", Geotag: "Addr1"},
		{ID: "p2", Geotag: "Addr1"},
		{ID: "p3", Geotag: "Addr2"},
	}
}

func sampleGeocoder() *fakeGeocoder {
	return newFakeGeocoder(map[string]model.LatLng{
		"Addr1":                    addr1,
		"Addr2":                    addr2,
		model.DefaultCenterAddress: {Lat: 42.0514, Lng: -87.6753},
	})
}

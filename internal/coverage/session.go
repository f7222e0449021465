package coverage

import (
	"sync"
	"time"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
)

// DefaultZoom is the map zoom used when flying to a geocoded address.
const DefaultZoom = 15

// Ticket orders analyses by start time within a Session.
type Ticket uint64

// Marker is a labelled point shown on the map for one counted facility.
type Marker struct {
	Location domain.Point  `json:"location"`
	Label    string        `json:"label"`
	Bucket   domain.Bucket `json:"bucket"`
}

// Viewport is the last fly-to command issued for the map.
type Viewport struct {
	Center domain.Point `json:"center"`
	Zoom   int          `json:"zoom"`
}

// State is a copy of everything a Session currently displays.
type State struct {
	AnalysisID string                 `json:"analysis_id,omitempty"`
	AnalyzedAt time.Time              `json:"analyzed_at,omitzero"`
	Address    string                 `json:"address,omitempty"`
	Result     *domain.CoverageResult `json:"result,omitempty"`
	Markers    []Marker               `json:"markers"`
	Viewport   *Viewport              `json:"viewport,omitempty"`
}

// Session owns the displayed state of one map: the current result, its
// markers and the viewport. Results replace the previous state wholesale.
// A result from an analysis that started before the currently applied one
// is discarded.
type Session struct {
	mu       sync.Mutex
	issued   uint64
	applied  uint64
	current  *domain.AnalysisEvent
	markers  []Marker
	viewport *Viewport
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Begin issues a ticket for a new analysis.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return Ticket(s.issued)
}

// Apply replaces the displayed result and markers. It returns false and
// leaves the session untouched when a newer analysis was already applied.
func (s *Session) Apply(t Ticket, ev domain.AnalysisEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) < s.applied {
		return false
	}
	s.applied = uint64(t)
	s.current = &ev
	s.markers = markersFor(ev.Result)
	return true
}

// FlyTo records a viewport change for the analysis holding t. Like Apply it
// returns false and does nothing once a newer analysis was applied.
func (s *Session) FlyTo(t Ticket, center domain.Point, zoom int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) < s.applied {
		return false
	}
	s.viewport = &Viewport{Center: center, Zoom: zoom}
	return true
}

// Snapshot returns a copy of the displayed state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Markers: append([]Marker{}, s.markers...)}
	if s.viewport != nil {
		vp := *s.viewport
		st.Viewport = &vp
	}
	if s.current != nil {
		result := s.current.Result
		result.Facilities = append(make([]domain.ScoredFacility, 0, len(result.Facilities)), result.Facilities...)
		if result.Nearest != nil {
			nearest := *result.Nearest
			result.Nearest = &nearest
		}
		st.AnalysisID = s.current.ID
		st.AnalyzedAt = s.current.AnalyzedAt
		st.Address = s.current.Address
		st.Result = &result
	}
	return st
}

func markersFor(result domain.CoverageResult) []Marker {
	markers := make([]Marker, 0, len(result.Facilities))
	for _, f := range result.Facilities {
		markers = append(markers, Marker{
			Location: f.Location,
			Label:    f.Name + "\n" + f.DistanceKM() + " km",
			Bucket:   f.Bucket,
		})
	}
	return markers
}

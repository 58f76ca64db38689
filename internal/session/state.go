// Package session holds the group-photo-session workflow as plain
// unidirectional state: typed fields, reducer methods for each
// completed fetch or write, and a pure projection for rendering.
// Remote calls happen elsewhere; this package only records outcomes.
package session

import (
	"treehouse-service/internal/models"
)

type Phase int

const (
	// PhaseSelecting covers member selection and group naming.
	PhaseSelecting Phase = iota
	// PhaseCapturing means the group exists and the camera is up.
	PhaseCapturing
	// PhaseUploading means a frame was taken and the chain is running.
	PhaseUploading
	// PhaseShared means the photo is linked and visible to the group.
	PhaseShared
)

// State is everything a group-photo session screen renders from.
// Fetches resolve independently, so any subset of the pointer fields
// may still be nil when a render happens; that partial render is
// expected, not guarded against.
type State struct {
	ViewerUID string
	Phase     Phase

	Profile *models.UserProfile
	Group   *models.Group
	Latest  *models.Picture

	Err error
}

// NewState starts a session for the given viewer in member selection.
func NewState(viewerUID string) *State {
	return &State{
		ViewerUID: viewerUID,
		Phase:     PhaseSelecting,
	}
}

// OnProfileLoaded records the viewer's own profile fetch completing.
func (s *State) OnProfileLoaded(profile *models.UserProfile) {
	s.Profile = profile
}

// OnGroupCreated records a successful group creation and moves the
// session to capture.
func (s *State) OnGroupCreated(group *models.Group) {
	s.Group = group
	s.Phase = PhaseCapturing
}

// OnGroupLoaded records an existing group fetch completing. It does
// not advance the phase: opening a group lands on capture directly.
func (s *State) OnGroupLoaded(group *models.Group) {
	s.Group = group
	if s.Phase == PhaseSelecting {
		s.Phase = PhaseCapturing
	}
}

// OnCaptureStarted marks the upload chain as running.
func (s *State) OnCaptureStarted() {
	s.Phase = PhaseUploading
}

// OnPhotoShared records the chain completing: the URL is linked into
// the group copy and the viewer's post marker is set.
func (s *State) OnPhotoShared(imageURL string, postedAt int64) {
	if s.Group != nil {
		s.Group.GroupImageURL = imageURL
		if s.Group.MemberPosts == nil {
			s.Group.MemberPosts = map[string]int64{}
		}
		s.Group.MemberPosts[s.ViewerUID] = postedAt
	}
	s.Phase = PhaseShared
	s.Err = nil
}

// OnLatestLoaded records the latest-picture fetch completing.
func (s *State) OnLatestLoaded(picture *models.Picture) {
	s.Latest = picture
}

// OnFailure records a failed remote call. The session stays where it
// is; the user retries by repeating the action.
func (s *State) OnFailure(err error) {
	s.Err = err
	if s.Phase == PhaseUploading {
		s.Phase = PhaseCapturing
	}
}

// View is what a screen renders. It carries no behavior.
type View struct {
	Phase         Phase    `json:"phase"`
	Username      string   `json:"username"`
	AvatarURL     string   `json:"avatarUrl"`
	GroupName     string   `json:"groupName"`
	GroupImageURL string   `json:"groupImageUrl"`
	LatestURL     string   `json:"latestUrl"`
	WaitingOn     []string `json:"waitingOn"`
	ProfileLoaded bool     `json:"profileLoaded"`
	GroupLoaded   bool     `json:"groupLoaded"`
}

// Project derives the render model from the state. Missing fetches
// project to zero values; the waiting-on list excludes the viewer by
// uid and members who already posted.
func Project(s *State) View {
	v := View{Phase: s.Phase}

	if s.Profile != nil {
		v.ProfileLoaded = true
		v.Username = s.Profile.Username
		v.AvatarURL = s.Profile.ProfileImageURL
	}

	if s.Group != nil {
		v.GroupLoaded = true
		v.GroupName = s.Group.GroupName
		v.GroupImageURL = s.Group.GroupImageURL
		v.WaitingOn = s.Group.WaitingOn(s.ViewerUID)
	}

	if s.Latest != nil {
		v.LatestURL = s.Latest.ImageURL
	}

	return v
}

package session

import (
	"errors"
	"reflect"
	"testing"
	"treehouse-service/internal/models"
)

func newGroup() *models.Group {
	return &models.Group{
		GroupID:       "g1",
		OwnerUID:      "c",
		GroupName:     "Trip",
		Members:       []string{"c.jpg", "i1.jpg", "i2.jpg"},
		MembersUID:    []string{"c", "i1", "i2"},
		GroupImageURL: "c.jpg",
	}
}

func TestPhaseProgression(t *testing.T) {
	s := NewState("c")
	if s.Phase != PhaseSelecting {
		t.Fatalf("expected initial phase Selecting, got %v", s.Phase)
	}

	s.OnGroupCreated(newGroup())
	if s.Phase != PhaseCapturing {
		t.Fatalf("expected Capturing after group created, got %v", s.Phase)
	}

	s.OnCaptureStarted()
	if s.Phase != PhaseUploading {
		t.Fatalf("expected Uploading after capture started, got %v", s.Phase)
	}

	s.OnPhotoShared("https://store/x.jpg", 100)
	if s.Phase != PhaseShared {
		t.Fatalf("expected Shared after photo shared, got %v", s.Phase)
	}
	if s.Group.GroupImageURL != "https://store/x.jpg" {
		t.Errorf("group image not updated: %s", s.Group.GroupImageURL)
	}
	if _, ok := s.Group.MemberPosts["c"]; !ok {
		t.Error("viewer's post marker not set")
	}
}

func TestFailureKeepsSessionAlive(t *testing.T) {
	s := NewState("c")
	s.OnGroupCreated(newGroup())
	s.OnCaptureStarted()

	s.OnFailure(errors.New("write failed"))

	if s.Phase != PhaseCapturing {
		t.Fatalf("expected failure to return to Capturing, got %v", s.Phase)
	}
	if s.Err == nil {
		t.Fatal("expected error to be recorded")
	}
	if s.Group.GroupImageURL != "c.jpg" {
		t.Errorf("group image changed despite failed chain: %s", s.Group.GroupImageURL)
	}
}

func TestProjectPartialState(t *testing.T) {
	s := NewState("i1")

	v := Project(s)
	if v.ProfileLoaded || v.GroupLoaded {
		t.Fatal("nothing loaded yet")
	}

	// Group fetch resolves first; profile still pending.
	s.OnGroupLoaded(newGroup())
	v = Project(s)
	if !v.GroupLoaded || v.ProfileLoaded {
		t.Fatal("expected group loaded, profile pending")
	}
	if v.GroupName != "Trip" || v.GroupImageURL != "c.jpg" {
		t.Errorf("unexpected group view: %+v", v)
	}
	// Viewer excluded by uid even before their profile has loaded.
	if got, want := v.WaitingOn, []string{"c.jpg", "i2.jpg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("waiting on = %v, want %v", got, want)
	}

	s.OnProfileLoaded(&models.UserProfile{UID: "i1", Username: "ivy", ProfileImageURL: "i1.jpg"})
	v = Project(s)
	if !v.ProfileLoaded || v.Username != "ivy" || v.AvatarURL != "i1.jpg" {
		t.Errorf("unexpected profile view: %+v", v)
	}
}

func TestWaitingOnNeverContainsViewer(t *testing.T) {
	s := NewState("i1")
	s.OnGroupLoaded(newGroup())
	s.OnProfileLoaded(&models.UserProfile{UID: "i1", ProfileImageURL: "i1.jpg"})

	for _, avatar := range Project(s).WaitingOn {
		if avatar == "i1.jpg" {
			t.Fatal("waiting-on list contains the viewer")
		}
	}
}

func TestWaitingOnShrinksAsMembersPost(t *testing.T) {
	s := NewState("c")
	g := newGroup()
	g.MemberPosts = map[string]int64{"i1": 50}
	s.OnGroupLoaded(g)

	if got, want := Project(s).WaitingOn, []string{"i2.jpg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("waiting on = %v, want %v", got, want)
	}

	s.OnPhotoShared("https://store/y.jpg", 60)
	if got, want := Project(s).WaitingOn, []string{"i2.jpg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("waiting on after own post = %v, want %v", got, want)
	}
}

func TestWaitingOnKeepsDuplicateAvatarsApart(t *testing.T) {
	// Two members with the same (empty) avatar URL must be tracked
	// separately; only the one who posted drops off.
	g := &models.Group{
		GroupID:     "g2",
		Members:     []string{"c.jpg", "", ""},
		MembersUID:  []string{"c", "i1", "i2"},
		MemberPosts: map[string]int64{"i1": 10},
	}

	s := NewState("c")
	s.OnGroupLoaded(g)

	if got, want := Project(s).WaitingOn, []string{""}; !reflect.DeepEqual(got, want) {
		t.Errorf("waiting on = %v, want %v", got, want)
	}
}

func TestOnLatestLoaded(t *testing.T) {
	s := NewState("c")
	s.OnLatestLoaded(&models.Picture{UID: "c", ImageURL: "https://store/latest.jpg"})

	if got := Project(s).LatestURL; got != "https://store/latest.jpg" {
		t.Errorf("latest url = %s", got)
	}
}

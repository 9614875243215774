package motion

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewSkeleton(t *testing.T) {
	s, err := NewSkeleton(threeJoints)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Root(), test.ShouldEqual, "Root")
	test.That(t, s.Len(), test.ShouldEqual, 3)
	test.That(t, s.Joints(), test.ShouldResemble, threeJoints)
	i, ok := s.Index("Head")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, i, test.ShouldEqual, 2)
	_, ok = s.Index("Tail")
	test.That(t, ok, test.ShouldBeFalse)

	// callers cannot mutate the skeleton
	joints := s.Joints()
	joints[0] = "Other"
	test.That(t, s.Root(), test.ShouldEqual, "Root")

	_, err = NewSkeleton(nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewSkeleton([]string{"Root", "Root"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate")
	_, err = NewSkeleton([]string{"Root", ""})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSkeletonFromProvider(t *testing.T) {
	seq := chainMotion{joints: threeJoints, frames: 2}.build()

	s, err := SkeletonFromProvider(seq, "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Joints(), test.ShouldResemble, threeJoints)

	s, err = SkeletonFromProvider(seq, "Spine")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Joints(), test.ShouldResemble, []string{"Spine", "Root", "Head"})

	_, err = SkeletonFromProvider(seq, "Pelvis")
	test.That(t, errors.Is(err, ErrSkeletonMismatch), test.ShouldBeTrue)
}

func TestSkeletonCheck(t *testing.T) {
	s, err := NewSkeleton(threeJoints)
	test.That(t, err, test.ShouldBeNil)

	full := chainMotion{joints: threeJoints, frames: 1}.build()
	test.That(t, s.Check(full, RoleReference), test.ShouldBeNil)

	// extra joints in the provider are fine
	extra := chainMotion{joints: []string{"Root", "Spine", "Head", "Hat"}, frames: 1}.build()
	test.That(t, s.Check(extra, RoleCandidate), test.ShouldBeNil)

	partial := chainMotion{joints: []string{"Root", "Spine"}, frames: 1}.build()
	err = s.Check(partial, RoleCandidate)
	test.That(t, errors.Is(err, ErrSkeletonMismatch), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "candidate")
	test.That(t, err.Error(), test.ShouldContainSubstring, "Head")
}

func TestWindow(t *testing.T) {
	long := chainMotion{joints: threeJoints, frames: 100}.build()
	short := chainMotion{joints: threeJoints, frames: 70}.build()

	w := NewWindow(40, long, short)
	test.That(t, w, test.ShouldResemble, Window{Min: 40, Max: 70})
	test.That(t, w.Len(), test.ShouldEqual, 30)
	test.That(t, w.Empty(), test.ShouldBeFalse)

	w = NewWindow(70, long, short)
	test.That(t, w.Len(), test.ShouldEqual, 0)
	test.That(t, w.Empty(), test.ShouldBeTrue)

	w = NewWindow(90, long, short)
	test.That(t, w.Len(), test.ShouldEqual, 0)
}

package motion

import (
	"github.com/pkg/errors"
)

// Skeleton is the ordered list of joints compared between sequences. The first joint is the root.
// A Skeleton is immutable once built and safe to share between goroutines.
type Skeleton struct {
	joints []string
	index  map[string]int
}

// NewSkeleton returns a skeleton over joints, which must be non-empty and unique.
func NewSkeleton(joints []string) (*Skeleton, error) {
	if len(joints) == 0 {
		return nil, errors.New("skeleton needs at least one joint")
	}
	s := &Skeleton{joints: make([]string, len(joints)), index: make(map[string]int, len(joints))}
	for i, name := range joints {
		if name == "" {
			return nil, errors.Errorf("skeleton joint %d has an empty name", i)
		}
		if _, ok := s.index[name]; ok {
			return nil, errors.Errorf("duplicate skeleton joint %q", name)
		}
		s.joints[i] = name
		s.index[name] = i
	}
	return s, nil
}

// SkeletonFromProvider builds the skeleton from a provider's joint list. If root is non-empty that
// joint is moved to the front; otherwise the provider's first joint is the root.
func SkeletonFromProvider(p PoseProvider, root string) (*Skeleton, error) {
	names := p.JointNames()
	if root == "" {
		return NewSkeleton(names)
	}
	joints := make([]string, 0, len(names))
	joints = append(joints, root)
	found := false
	for _, name := range names {
		if name == root {
			found = true
			continue
		}
		joints = append(joints, name)
	}
	if !found {
		return nil, errors.Wrapf(ErrSkeletonMismatch, "root joint %q not found", root)
	}
	return NewSkeleton(joints)
}

// Joints returns a copy of the joint names in skeleton order.
func (s *Skeleton) Joints() []string {
	out := make([]string, len(s.joints))
	copy(out, s.joints)
	return out
}

// Root is the name of the root joint.
func (s *Skeleton) Root() string {
	return s.joints[0]
}

// Len is the number of joints.
func (s *Skeleton) Len() int {
	return len(s.joints)
}

// Index returns the position of joint in the skeleton.
func (s *Skeleton) Index(joint string) (int, bool) {
	i, ok := s.index[joint]
	return i, ok
}

// Check verifies that p exposes every joint in the skeleton.
func (s *Skeleton) Check(p PoseProvider, role Role) error {
	have := make(map[string]struct{})
	for _, name := range p.JointNames() {
		have[name] = struct{}{}
	}
	var missing []string
	for _, name := range s.joints {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return newSkeletonMismatchError(role, missing)
	}
	return nil
}

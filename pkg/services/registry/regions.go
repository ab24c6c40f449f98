package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// RegionProfile describes one recognized region code from the regions
// profile file.
type RegionProfile struct {
	Code  string
	Name  string
	State string
}

// Registry exposes the set of region codes the filter resolver accepts.
type Registry interface {
	GetRegions(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, code string) (*RegionProfile, error)
	IsKnown(ctx context.Context, code string) bool
}

type iniRegistry struct {
	cfg *ini.File
}

// NewRegistry loads region profiles from an INI file with one section
// per region code:
//
//	[DL-ND]
//	name = New Delhi
//	state = Delhi
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetRegions(_ context.Context) ([]string, error) {
	var codes []string
	for _, section := range r.cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		codes = append(codes, strings.ToUpper(section.Name()))
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, code string) (*RegionProfile, error) {
	code = strings.ToUpper(code)
	if !r.cfg.HasSection(code) {
		return nil, fmt.Errorf("region %s not found", code)
	}
	section := r.cfg.Section(code)
	return &RegionProfile{
		Code:  code,
		Name:  section.Key("name").String(),
		State: section.Key("state").String(),
	}, nil
}

func (r *iniRegistry) IsKnown(_ context.Context, code string) bool {
	return r.cfg.HasSection(strings.ToUpper(code))
}

// DefaultRegions is the built-in state-code set used when no profile
// file is configured.
var DefaultRegions = []string{
	"AP", "AS", "BR", "CG", "DL", "GA", "GJ", "HP", "HR", "JH",
	"KA", "KL", "MH", "MP", "OR", "PB", "RJ", "TN", "TS", "UK",
	"UP", "WB",
}

// NewDefaultRegistry returns a static registry over DefaultRegions.
func NewDefaultRegistry() Registry {
	return NewStaticRegistry(DefaultRegions...)
}

type staticRegistry struct {
	codes map[string]RegionProfile
}

// NewStaticRegistry builds a registry from a fixed list of codes. Used
// when no profile file is configured and in tests.
func NewStaticRegistry(codes ...string) Registry {
	m := make(map[string]RegionProfile, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(c)
		m[c] = RegionProfile{Code: c}
	}
	return &staticRegistry{codes: m}
}

func (r *staticRegistry) GetRegions(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(r.codes))
	for c := range r.codes {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *staticRegistry) GetProfile(_ context.Context, code string) (*RegionProfile, error) {
	p, ok := r.codes[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("region %s not found", code)
	}
	return &p, nil
}

func (r *staticRegistry) IsKnown(_ context.Context, code string) bool {
	_, ok := r.codes[strings.ToUpper(code)]
	return ok
}

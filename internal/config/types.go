package config

// Mode selects how much of the plan survives building.
type Mode string

const (
	// ModeFull plans every change kind.
	ModeFull Mode = "full"
	// ModeReduced plans only immediately-volatile changes; anything
	// boot-persistent or service-affecting is dropped into the skipped list.
	ModeReduced Mode = "reduced"
)

// Policy is the full powertrim policy document.
type Policy struct {
	Version string `yaml:"version" validate:"required"`
	Mode    Mode   `yaml:"mode,omitempty" validate:"omitempty,oneof=full reduced"`

	// SkipCategories lists finding categories the plan builder must not act
	// on. Skipped findings are retained for reporting.
	SkipCategories []string `yaml:"skip_categories,omitempty" validate:"omitempty,dive,min=1"`

	// StateFile is where the apply state is persisted.
	StateFile string `yaml:"state_file,omitempty"`

	// UnitPath is where the boot-persistence unit is generated.
	UnitPath string `yaml:"unit_path,omitempty"`

	// Bootloader forces a bootloader kind instead of detecting one.
	Bootloader string `yaml:"bootloader,omitempty" validate:"omitempty,oneof=auto systemd-boot grub"`

	// ToolTimeout bounds every subprocess invocation, in seconds.
	ToolTimeout int `yaml:"tool_timeout,omitempty" validate:"omitempty,min=1,max=600"`

	// ExtraKernelParams are appended to the planned kernel parameters.
	ExtraKernelParams []string `yaml:"extra_kernel_params,omitempty" validate:"omitempty,dive,kernel_param"`
}

const (
	defaultStateFile   = "/var/lib/powertrim/state.json"
	defaultUnitPath    = "/etc/systemd/system/powertrim-powersave.service"
	defaultToolTimeout = 30
)

// Default returns the policy used when no config file is present.
func Default() *Policy {
	return &Policy{
		Version:     "1.0",
		Mode:        ModeFull,
		StateFile:   defaultStateFile,
		UnitPath:    defaultUnitPath,
		Bootloader:  "auto",
		ToolTimeout: defaultToolTimeout,
	}
}

// SkipsCategory reports whether the policy excludes a finding category.
func (p *Policy) SkipsCategory(category string) bool {
	for _, c := range p.SkipCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (p *Policy) applyDefaults() {
	if p.Mode == "" {
		p.Mode = ModeFull
	}
	if p.StateFile == "" {
		p.StateFile = defaultStateFile
	}
	if p.UnitPath == "" {
		p.UnitPath = defaultUnitPath
	}
	if p.Bootloader == "" {
		p.Bootloader = "auto"
	}
	if p.ToolTimeout == 0 {
		p.ToolTimeout = defaultToolTimeout
	}
}

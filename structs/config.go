package structs

// OldNew describes a configuration value that changed on reload.
type OldNew struct {
	ParamPath []string
	Name      string
	Old, New  any
}

type ConfigListener interface {
	OnConfigChange(OldNew) error
}

package schema

type Job struct {
	RunsOn   string            `yaml:"runs-on,omitempty"`
	Defaults Defaults          `yaml:"defaults,omitempty"`
	Env      map[string]string `yaml:"env,omitempty"`
	Steps    []Step            `yaml:"steps"`
}

type Defaults struct {
	WorkingDirectory string `yaml:"working-directory,omitempty"`
}

type Step struct {
	Name             string            `yaml:"name,omitempty"`
	Uses             string            `yaml:"uses,omitempty"`
	With             map[string]string `yaml:"with,omitempty"`
	Run              string            `yaml:"run,omitempty"`
	WorkingDirectory string            `yaml:"working-directory,omitempty"`
	Env              map[string]string `yaml:"env,omitempty"`
}

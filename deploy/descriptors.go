package deploy

// EnvironmentDescriptor identifies one deployable target.
type EnvironmentDescriptor struct {
	Name      string            `yaml:"name" json:"name"`
	AccountID string            `yaml:"account_id" json:"account_id"`
	Region    string            `yaml:"region" json:"region"`
	Class     EnvironmentClass  `yaml:"class" json:"class"`
	Tags      map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// ApplicationDescriptor describes the application being deployed.
type ApplicationDescriptor struct {
	Name             string            `yaml:"name" json:"name"`
	Version          string            `yaml:"version" json:"version"`
	Settings         map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
	SizingOverride   *SizingOverride   `yaml:"sizing_override,omitempty" json:"sizing_override,omitempty"`
	SecurityOverride *SecurityOverride `yaml:"security_override,omitempty" json:"security_override,omitempty"`
}

// SizingOverride is a partial override applied on top of the class profile.
// Nil fields keep the profile value.
type SizingOverride struct {
	InstanceType    *string `yaml:"instance_type,omitempty" json:"instance_type,omitempty"`
	MinCapacity     *int    `yaml:"min_capacity,omitempty" json:"min_capacity,omitempty"`
	MaxCapacity     *int    `yaml:"max_capacity,omitempty" json:"max_capacity,omitempty"`
	DesiredCapacity *int    `yaml:"desired_capacity,omitempty" json:"desired_capacity,omitempty"`
	TaskCPU         *int    `yaml:"task_cpu,omitempty" json:"task_cpu,omitempty"`
	TaskMemoryMB    *int    `yaml:"task_memory_mb,omitempty" json:"task_memory_mb,omitempty"`
	LambdaMemoryMB  *int    `yaml:"lambda_memory_mb,omitempty" json:"lambda_memory_mb,omitempty"`
}

// SecurityOverride adjusts security posture for one application.
type SecurityOverride struct {
	RequireEncryption  *bool `yaml:"require_encryption,omitempty" json:"require_encryption,omitempty"`
	AllowPublicIngress *bool `yaml:"allow_public_ingress,omitempty" json:"allow_public_ingress,omitempty"`
}

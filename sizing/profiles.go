// Package sizing maps environment classes to complete sizing profiles.
// Selection is a pure function of class alone; a profile never mixes fields
// from two classes.
package sizing

import "github.com/yairfalse/varmista/deploy"

// Profile is the complete sizing decision for one environment class.
type Profile struct {
	InstanceType        string `json:"instance_type"`
	MinCapacity         int    `json:"min_capacity"`
	MaxCapacity         int    `json:"max_capacity"`
	DesiredCapacity     int    `json:"desired_capacity"`
	DBInstanceClass     string `json:"db_instance_class"`
	LambdaMemoryMB      int    `json:"lambda_memory_mb"`
	TaskCPU             int    `json:"task_cpu"`
	TaskMemoryMB        int    `json:"task_memory_mb"`
	CacheNodeType       string `json:"cache_node_type"`
	SearchInstanceType  string `json:"search_instance_type"`
	HighAvailability    bool   `json:"high_availability"`
	BackupRetentionDays int    `json:"backup_retention_days"`
}

var profiles = map[deploy.EnvironmentClass]Profile{
	deploy.ClassNonProduction: {
		InstanceType:        "t3.small",
		MinCapacity:         1,
		MaxCapacity:         2,
		DesiredCapacity:     1,
		DBInstanceClass:     "db.t3.small",
		LambdaMemoryMB:      256,
		TaskCPU:             256,
		TaskMemoryMB:        512,
		CacheNodeType:       "cache.t3.micro",
		SearchInstanceType:  "t3.small.search",
		HighAvailability:    false,
		BackupRetentionDays: 1,
	},
	deploy.ClassProduction: {
		InstanceType:        "m5.large",
		MinCapacity:         2,
		MaxCapacity:         10,
		DesiredCapacity:     3,
		DBInstanceClass:     "db.r5.large",
		LambdaMemoryMB:      1024,
		TaskCPU:             1024,
		TaskMemoryMB:        2048,
		CacheNodeType:       "cache.r5.large",
		SearchInstanceType:  "r5.large.search",
		HighAvailability:    true,
		BackupRetentionDays: 30,
	},
	deploy.ClassSandbox: {
		InstanceType:        "t3.micro",
		MinCapacity:         1,
		MaxCapacity:         1,
		DesiredCapacity:     1,
		DBInstanceClass:     "db.t3.micro",
		LambdaMemoryMB:      128,
		TaskCPU:             256,
		TaskMemoryMB:        512,
		CacheNodeType:       "cache.t3.micro",
		SearchInstanceType:  "t3.small.search",
		HighAvailability:    false,
		BackupRetentionDays: 0,
	},
	deploy.ClassSecurity: {
		InstanceType:        "m5.large",
		MinCapacity:         2,
		MaxCapacity:         4,
		DesiredCapacity:     2,
		DBInstanceClass:     "db.r5.large",
		LambdaMemoryMB:      512,
		TaskCPU:             512,
		TaskMemoryMB:        1024,
		CacheNodeType:       "cache.m5.large",
		SearchInstanceType:  "m5.large.search",
		HighAvailability:    true,
		BackupRetentionDays: 90,
	},
	deploy.ClassSharedServices: {
		InstanceType:        "m5.xlarge",
		MinCapacity:         2,
		MaxCapacity:         6,
		DesiredCapacity:     2,
		DBInstanceClass:     "db.r5.xlarge",
		LambdaMemoryMB:      512,
		TaskCPU:             512,
		TaskMemoryMB:        1024,
		CacheNodeType:       "cache.m5.large",
		SearchInstanceType:  "m5.large.search",
		HighAvailability:    true,
		BackupRetentionDays: 14,
	},
}

// ForClass returns the sizing profile for an environment class. The table is
// total over the closed class enum; an out-of-range value gets the
// non-production profile.
func ForClass(class deploy.EnvironmentClass) Profile {
	if p, ok := profiles[class]; ok {
		return p
	}
	return profiles[deploy.ClassNonProduction]
}

// ForEnvironment resolves an environment name to its class and returns that
// profile. Unregistered names fall back to the non-production profile: the
// deliberate policy is a minimal footprint default rather than fail-closed,
// so a typo'd environment name yields the smallest (cheapest) sizing instead
// of aborting.
func ForEnvironment(name string) Profile {
	class, ok := deploy.ClassForEnvironment(name)
	if !ok {
		return profiles[deploy.ClassNonProduction]
	}
	return profiles[class]
}

// ApplyOverride layers an application-level partial override on top of a
// profile. Nil fields keep the profile value.
func ApplyOverride(p Profile, o *deploy.SizingOverride) Profile {
	if o == nil {
		return p
	}
	if o.InstanceType != nil {
		p.InstanceType = *o.InstanceType
	}
	if o.MinCapacity != nil {
		p.MinCapacity = *o.MinCapacity
	}
	if o.MaxCapacity != nil {
		p.MaxCapacity = *o.MaxCapacity
	}
	if o.DesiredCapacity != nil {
		p.DesiredCapacity = *o.DesiredCapacity
	}
	if o.TaskCPU != nil {
		p.TaskCPU = *o.TaskCPU
	}
	if o.TaskMemoryMB != nil {
		p.TaskMemoryMB = *o.TaskMemoryMB
	}
	if o.LambdaMemoryMB != nil {
		p.LambdaMemoryMB = *o.LambdaMemoryMB
	}
	return p
}

package naming

// ResourceKind identifies what a canonical name is for. Each kind carries its
// own provider-imposed length limit; there is no single global limit because
// load balancers (32) and OpenSearch domains (28) are far tighter than most.
type ResourceKind int

const (
	KindEcsCluster ResourceKind = iota
	KindEcsService
	KindEcsTaskDefinition
	KindIamRole
	KindIamPolicy
	KindS3Bucket
	KindLoadBalancer
	KindTargetGroup
	KindSecurityGroup
	KindRdsInstance
	KindLambdaFunction
	KindLogGroup
	KindSqsQueue
	KindDynamoTable
	KindElastiCacheCluster
	KindOpenSearchDomain
	KindSecret
	KindKmsAlias
)

type kindSpec struct {
	name   string // display name
	token  string // field embedded in composed names
	maxLen int
	minLen int
}

var kindSpecs = map[ResourceKind]kindSpec{
	KindEcsCluster:         {"ecs-cluster", "ecs", 255, 1},
	KindEcsService:         {"ecs-service", "svc", 255, 1},
	KindEcsTaskDefinition:  {"ecs-task-definition", "task", 255, 1},
	KindIamRole:            {"iam-role", "role", 64, 1},
	KindIamPolicy:          {"iam-policy", "pol", 128, 1},
	KindS3Bucket:           {"s3-bucket", "s3", 63, 3},
	KindLoadBalancer:       {"load-balancer", "alb", 32, 1},
	KindTargetGroup:        {"target-group", "tg", 32, 1},
	KindSecurityGroup:      {"security-group", "sg", 255, 1},
	KindRdsInstance:        {"rds-instance", "rds", 63, 1},
	KindLambdaFunction:     {"lambda-function", "fn", 64, 1},
	KindLogGroup:           {"log-group", "logs", 512, 1},
	KindSqsQueue:           {"sqs-queue", "sqs", 80, 1},
	KindDynamoTable:        {"dynamodb-table", "ddb", 255, 3},
	KindElastiCacheCluster: {"elasticache-cluster", "cache", 50, 1},
	KindOpenSearchDomain:   {"opensearch-domain", "os", 28, 3},
	KindSecret:             {"secretsmanager-secret", "secret", 512, 1},
	KindKmsAlias:           {"kms-alias", "kms", 250, 1},
}

// String returns the display name, e.g. "ecs-cluster".
func (k ResourceKind) String() string {
	if spec, ok := kindSpecs[k]; ok {
		return spec.name
	}
	return "unknown"
}

// Token returns the field embedded in composed names, e.g. "ecs".
func (k ResourceKind) Token() string {
	return kindSpecs[k].token
}

// MaxLength returns the provider length limit for this kind.
func (k ResourceKind) MaxLength() int {
	return kindSpecs[k].maxLen
}

// KindFromString resolves a display name back to its kind.
func KindFromString(name string) (ResourceKind, bool) {
	for k, spec := range kindSpecs {
		if spec.name == name {
			return k, true
		}
	}
	return 0, false
}

// AllKinds returns every supported kind in declaration order.
func AllKinds() []ResourceKind {
	kinds := make([]ResourceKind, 0, len(kindSpecs))
	for k := KindEcsCluster; k <= KindKmsAlias; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

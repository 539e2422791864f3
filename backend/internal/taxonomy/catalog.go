package taxonomy

// AWS services organized by category. This is a fixed, hand-curated catalog:
// entries are canonical display names, and matching is whole-word only so
// short names like "S3" never match inside longer tokens.
var catalog = map[string][]string{
	"compute": {
		"EC2", "Lambda", "ECS", "EKS", "Fargate", "Batch", "Lightsail", "App Runner",
	},
	"storage": {
		"S3", "EBS", "EFS", "FSx", "Glacier", "Storage Gateway", "Backup",
	},
	"database": {
		"RDS", "DynamoDB", "Aurora", "Redshift", "ElastiCache", "Neptune",
		"DocumentDB", "MemoryDB", "Timestream",
	},
	"networking": {
		"VPC", "CloudFront", "Route 53", "API Gateway", "Direct Connect",
		"Transit Gateway", "ELB", "ALB", "NLB", "PrivateLink", "Global Accelerator",
	},
	"security": {
		"IAM", "KMS", "Secrets Manager", "GuardDuty", "Security Hub", "WAF",
		"Shield", "Cognito", "Certificate Manager", "ACM", "Macie", "Detective",
	},
	"ml": {
		"Bedrock", "SageMaker", "Rekognition", "Comprehend", "Textract",
		"Polly", "Translate", "Transcribe",
	},
	"monitoring": {
		"CloudWatch", "X-Ray", "CloudTrail", "Config", "Systems Manager",
		"EventBridge", "SNS", "SQS",
	},
	"management": {
		"CloudFormation", "Systems Manager", "OpsWorks", "Service Catalog",
		"Control Tower", "Organizations", "Resource Groups",
	},
}

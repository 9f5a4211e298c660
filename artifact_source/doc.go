// Package artifact_source provides the stores that access log objects are discovered in and downloaded from.
//
// ELB writes access logs under a fixed, date partitioned key layout:
//
//	[{prefix}/]AWSLogs/{account_id}/elasticloadbalancing/{region}/yyyy/mm/dd/
//	    {account_id}_elasticloadbalancing_{region}_{name}_{yyyymmddThhmmZ}_{ip}_{suffix}
//
// [DatePrefixes] returns the day prefixes to list for a watermark and [ObjectKeyParser] extracts the
// metadata encoded in an object key, most importantly its timestamp.
//
// Sources provided:
// - [AwsS3BucketSource]
// - [FileSystemSource], a local directory laid out like the bucket
package artifact_source

package broadcast

var PartitionKey = partitionKey

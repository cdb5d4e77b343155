package constant

// PublishState is a step of the publish state machine. A state is never revisited.
type PublishState string

const (
	PublishStateValidating  PublishState = "VALIDATING"
	PublishStateTranscoding PublishState = "TRANSCODING"
	PublishStateUploading   PublishState = "UPLOADING"
	PublishStatePersisting  PublishState = "PERSISTING"
	PublishStateDone        PublishState = "DONE"
	PublishStateAborted     PublishState = "ABORTED"
)

func (s PublishState) Terminal() bool {
	return s == PublishStateDone || s == PublishStateAborted
}

type ResourceType string

const (
	ResourceTypeVideo ResourceType = "video"
	ResourceTypeImage ResourceType = "image"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

// Mongo collection names.
const (
	CollectionVideos        = "videos"
	CollectionUsers         = "users"
	CollectionComments      = "comments"
	CollectionLikes         = "likes"
	CollectionSubscriptions = "subscriptions"
	CollectionPlaylists     = "playlists"
	CollectionTweets        = "tweets"
)

// Media event routing.
const (
	MediaExchange        = "media_exchange"
	MediaExchangeDLX     = "media_exchange_dlx"
	CleanupQueue         = "media_cleanup_queue"
	CleanupQueueDLQ      = "media_cleanup_queue_dlq"
	RoutingVideoDeleted  = "video.deleted"
	RoutingVideoPublish  = "video.published"
	RoutingCleanupDLQKey = "dlq.video.deleted"
)

const ManifestName = "master.m3u8"

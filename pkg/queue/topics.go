// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：ph.<域>.<动作>，尽量稳定且向后兼容.

const (
	// 文件领域.
	TopicFileUploaded = "ph.file.uploaded" // 对象写入存储且元数据落库
	TopicFileDeleted  = "ph.file.deleted"  // 软删除
	TopicFileRestored = "ph.file.restored" // 从回收站恢复
	TopicFilePurged   = "ph.file.purged"   // 保留期后被彻底删除

	// 分享领域.
	TopicShareIssued = "ph.share.issued" // 签发新的分享链接

	// 文档领域.
	TopicDocumentStatusChanged = "ph.document.status_changed" // 客户审批状态变更
)

// 主题分组.
var (
	FileTopics = []string{
		TopicFileUploaded, TopicFileDeleted, TopicFileRestored, TopicFilePurged,
	}

	AllTopics = []string{
		TopicFileUploaded, TopicFileDeleted, TopicFileRestored, TopicFilePurged,
		TopicShareIssued, TopicDocumentStatusChanged,
	}
)

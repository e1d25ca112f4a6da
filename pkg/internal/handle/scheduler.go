package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/projecthub/pkg/context"
	"github.com/yeisme/projecthub/pkg/scheduler"
)

func getScheduler(c *gin.Context) (*scheduler.Scheduler, bool) {
	sched := ctxPkg.GetScheduler(c.Request.Context())
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler disabled", "code": CodeUnavailable})

		return nil, false
	}

	return sched, true
}

func schedulerError(c *gin.Context, err error) {
	if errors.Is(err, scheduler.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": CodeNotFound})

		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": CodeInternal})
}

// SchedulerJobs 返回所有定时任务信息.
//
//	@Summary	定时任务
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Security	AdminKey
//	@Router		/api/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos(), "waiting": sched.JobsWaitingInQueue()})
}

// SchedulerRunJob 立即执行一次任务，例如手动清理过期分享.
//
//	@Summary	立即执行定时任务
//	@Tags		调度器
//	@Param		name	path	string	true	"任务名称"
//	@Success	202	{object}	map[string]string
//	@Security	AdminKey
//	@Router		/api/scheduler/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	if err := sched.RunNow(c.Param("name")); err != nil {
		schedulerError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered"})
}

// SchedulerRemoveJob 按名称删除任务，重启服务后恢复.
//
//	@Summary	删除定时任务
//	@Tags		调度器
//	@Param		name	path	string	true	"任务名称"
//	@Success	200	{object}	map[string]string
//	@Security	AdminKey
//	@Router		/api/scheduler/jobs/{name} [delete]
func SchedulerRemoveJob(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	if err := sched.RemoveJob(c.Param("name")); err != nil {
		schedulerError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

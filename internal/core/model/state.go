package model

// AgentState 表示注册监督器的生命周期状态
type AgentState string

const (
	// StateStarting 表示正在执行首次注册
	StateStarting AgentState = "starting"
	// StateRegistered 表示服务记录已在网络上发布
	StateRegistered AgentState = "registered"
	// StateRefreshing 表示正在执行周期性的撤销并重新发布
	StateRefreshing AgentState = "refreshing"
	// StateUnregistering 表示收到终止请求后正在注销服务
	StateUnregistering AgentState = "unregistering"
	// StateStopped 表示监督器已退出，为终止状态
	StateStopped AgentState = "stopped"
)

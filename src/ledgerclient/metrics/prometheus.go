package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// PrometheusMetrics implements ClientMetrics with Prometheus-compatible
// export. Thread-safe via sync.RWMutex, mirroring the chain adapter's
// recorder.
type PrometheusMetrics struct {
	mu sync.RWMutex

	nodeStats map[string]*nodeStats
	execStats execStatsT

	totalNodeCalls      int64
	successfulNodeCalls int64
	failedNodeCalls     int64
}

type nodeStats struct {
	totalCalls         int64
	successfulCalls    int64
	failedCalls        int64
	totalDuration      time.Duration
	minDuration        time.Duration
	maxDuration        time.Duration
	lastSuccessfulCall time.Time
	lastFailedCall     time.Time
}

type execStatsT struct {
	totalCalls         int64
	successfulCalls    int64
	failedCalls        int64
	totalDuration      time.Duration
	totalAttempts      int64
	lastSuccessfulCall time.Time
}

// NewPrometheusMetrics creates a new Prometheus-compatible metrics recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{nodeStats: make(map[string]*nodeStats)}
}

// RecordNodeCall records one RPC round-trip against a single node.
func (p *PrometheusMetrics) RecordNodeCall(nodeAccountId string, duration time.Duration, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalNodeCalls++
	if success {
		p.successfulNodeCalls++
	} else {
		p.failedNodeCalls++
	}

	stats, exists := p.nodeStats[nodeAccountId]
	if !exists {
		stats = &nodeStats{minDuration: duration, maxDuration: duration}
		p.nodeStats[nodeAccountId] = stats
	}

	stats.totalCalls++
	stats.totalDuration += duration
	if success {
		stats.successfulCalls++
		stats.lastSuccessfulCall = time.Now()
	} else {
		stats.failedCalls++
		stats.lastFailedCall = time.Now()
	}
	if duration < stats.minDuration || stats.minDuration == 0 {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// RecordExecution records one full Execute() call.
func (p *PrometheusMetrics) RecordExecution(attempts int, duration time.Duration, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.execStats.totalCalls++
	p.execStats.totalDuration += duration
	p.execStats.totalAttempts += int64(attempts)
	if success {
		p.execStats.successfulCalls++
		p.execStats.lastSuccessfulCall = time.Now()
	} else {
		p.execStats.failedCalls++
	}
}

// GetMetrics returns aggregated metrics for all recorded operations.
func (p *PrometheusMetrics) GetMetrics() *AggregatedMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var totalNodeDuration time.Duration
	for _, s := range p.nodeStats {
		totalNodeDuration += s.totalDuration
	}

	nodeSuccessRate := 0.0
	if p.totalNodeCalls > 0 {
		nodeSuccessRate = float64(p.successfulNodeCalls) / float64(p.totalNodeCalls)
	}
	avgNodeDuration := time.Duration(0)
	if p.totalNodeCalls > 0 {
		avgNodeDuration = totalNodeDuration / time.Duration(p.totalNodeCalls)
	}

	execSuccessRate := 0.0
	if p.execStats.totalCalls > 0 {
		execSuccessRate = float64(p.execStats.successfulCalls) / float64(p.execStats.totalCalls)
	}
	avgExecDuration := time.Duration(0)
	avgAttempts := 0.0
	if p.execStats.totalCalls > 0 {
		avgExecDuration = p.execStats.totalDuration / time.Duration(p.execStats.totalCalls)
		avgAttempts = float64(p.execStats.totalAttempts) / float64(p.execStats.totalCalls)
	}

	return &AggregatedMetrics{
		TotalNodeCalls:       p.totalNodeCalls,
		SuccessfulNodeCalls:  p.successfulNodeCalls,
		FailedNodeCalls:      p.failedNodeCalls,
		NodeCallSuccessRate:  nodeSuccessRate,
		AvgNodeCallDuration:  avgNodeDuration,
		TotalExecutions:      p.execStats.totalCalls,
		SuccessfulExecutions: p.execStats.successfulCalls,
		FailedExecutions:     p.execStats.failedCalls,
		ExecutionSuccessRate: execSuccessRate,
		AvgExecutionDuration: avgExecDuration,
		AvgAttemptsPerExec:   avgAttempts,
		LastSuccessfulExec:   p.execStats.lastSuccessfulCall,
	}
}

// GetNodeMetrics returns aggregated metrics for a single node.
func (p *PrometheusMetrics) GetNodeMetrics(nodeAccountId string) *NodeMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats, exists := p.nodeStats[nodeAccountId]
	if !exists {
		return nil
	}

	successRate := 0.0
	if stats.totalCalls > 0 {
		successRate = float64(stats.successfulCalls) / float64(stats.totalCalls)
	}
	avgDuration := time.Duration(0)
	if stats.totalCalls > 0 {
		avgDuration = stats.totalDuration / time.Duration(stats.totalCalls)
	}

	return &NodeMetrics{
		NodeAccountId:      nodeAccountId,
		TotalCalls:         stats.totalCalls,
		SuccessfulCalls:    stats.successfulCalls,
		FailedCalls:        stats.failedCalls,
		SuccessRate:        successRate,
		AvgDuration:        avgDuration,
		MinDuration:        stats.minDuration,
		MaxDuration:        stats.maxDuration,
		LastSuccessfulCall: stats.lastSuccessfulCall,
		LastFailedCall:     stats.lastFailedCall,
	}
}

// GetHealthStatus reports the pipeline's overall health based on recent
// metrics.
func (p *PrometheusMetrics) GetHealthStatus() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthStatusLocked()
}

func (p *PrometheusMetrics) healthStatusLocked() HealthStatus {
	status := HealthStatus{CheckedAt: time.Now()}

	successRate := 0.0
	if p.execStats.totalCalls > 0 {
		successRate = float64(p.execStats.successfulCalls) / float64(p.execStats.totalCalls)
	}
	avgDuration := time.Duration(0)
	if p.execStats.totalCalls > 0 {
		avgDuration = p.execStats.totalDuration / time.Duration(p.execStats.totalCalls)
	}

	status.LowSuccessRate = successRate < 0.90 && p.execStats.totalCalls > 0
	status.HighLatency = avgDuration > 5*time.Second
	status.NoRecentSuccess = !p.execStats.lastSuccessfulCall.IsZero() &&
		time.Since(p.execStats.lastSuccessfulCall) > 5*time.Minute

	if p.execStats.totalCalls == 0 {
		status.Status = "OK"
		status.Message = "no executions recorded yet"
		return status
	}

	if status.LowSuccessRate || status.HighLatency || status.NoRecentSuccess {
		status.Status = "Degraded"
		var messages []string
		if status.LowSuccessRate {
			messages = append(messages, fmt.Sprintf("low success rate (%.1f%%)", successRate*100))
		}
		if status.HighLatency {
			messages = append(messages, fmt.Sprintf("high latency (%v)", avgDuration))
		}
		if status.NoRecentSuccess {
			messages = append(messages, fmt.Sprintf("no recent success (%v ago)", time.Since(p.execStats.lastSuccessfulCall)))
		}
		status.Message = strings.Join(messages, ", ")
		return status
	}

	status.Status = "OK"
	status.Message = fmt.Sprintf("success rate: %.1f%%, avg latency: %v", successRate*100, avgDuration)
	return status
}

// Export returns metrics in Prometheus text format.
func (p *PrometheusMetrics) Export() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var sb strings.Builder

	sb.WriteString("# HELP ledgerclient_node_calls_total Total number of per-node RPC calls\n")
	sb.WriteString("# TYPE ledgerclient_node_calls_total counter\n")
	for node, stats := range p.nodeStats {
		sb.WriteString(fmt.Sprintf("ledgerclient_node_calls_total{node=\"%s\",status=\"success\"} %d\n", node, stats.successfulCalls))
		sb.WriteString(fmt.Sprintf("ledgerclient_node_calls_total{node=\"%s\",status=\"failure\"} %d\n", node, stats.failedCalls))
	}
	sb.WriteString("\n")

	sb.WriteString("# HELP ledgerclient_execution_total Total number of Execute() calls\n")
	sb.WriteString("# TYPE ledgerclient_execution_total counter\n")
	sb.WriteString(fmt.Sprintf("ledgerclient_execution_total{status=\"success\"} %d\n", p.execStats.successfulCalls))
	sb.WriteString(fmt.Sprintf("ledgerclient_execution_total{status=\"failure\"} %d\n", p.execStats.failedCalls))
	sb.WriteString("\n")

	sb.WriteString("# HELP ledgerclient_execution_attempts_avg Average node attempts per execution\n")
	sb.WriteString("# TYPE ledgerclient_execution_attempts_avg gauge\n")
	avgAttempts := 0.0
	if p.execStats.totalCalls > 0 {
		avgAttempts = float64(p.execStats.totalAttempts) / float64(p.execStats.totalCalls)
	}
	sb.WriteString(fmt.Sprintf("ledgerclient_execution_attempts_avg %.3f\n", avgAttempts))
	sb.WriteString("\n")

	health := p.healthStatusLocked()
	healthValue := 0.0
	switch health.Status {
	case "OK":
		healthValue = 1.0
	case "Degraded":
		healthValue = 0.5
	}
	sb.WriteString("# HELP ledgerclient_health_status Health status (1=OK, 0.5=Degraded, 0=Down)\n")
	sb.WriteString("# TYPE ledgerclient_health_status gauge\n")
	sb.WriteString(fmt.Sprintf("ledgerclient_health_status %.1f\n", healthValue))

	return sb.String()
}

// Reset clears all recorded metrics.
func (p *PrometheusMetrics) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nodeStats = make(map[string]*nodeStats)
	p.execStats = execStatsT{}
	p.totalNodeCalls = 0
	p.successfulNodeCalls = 0
	p.failedNodeCalls = 0
}

var _ ClientMetrics = (*PrometheusMetrics)(nil)

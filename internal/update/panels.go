package update

import (
	"strings"
	"time"

	"github.com/sandeepkv93/taskcal/internal/views"
)

func (m Model) renderSidePane() string {
	parts := []string{m.renderDetailPane()}
	if palette := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input); palette != "" {
		parts = append(parts, palette)
	}
	if help := m.renderHelpIfVisible(); help != "" {
		parts = append(parts, help)
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderDetailPane() string {
	t, ok := m.selectedTask()
	if !ok {
		return views.RenderDetail(views.DetailData{})
	}
	now := m.now()
	data := views.DetailData{
		Title:     t.Title,
		Status:    string(t.Status),
		Due:       dueLabel(t, now),
		Important: t.IsImportant,
		Created:   views.CreatedLabel(t.CreatedAt, now),
	}
	if strings.TrimSpace(t.Description) != "" {
		data.DescriptionView = m.detailViewport.View()
	}
	return views.RenderDetail(data)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

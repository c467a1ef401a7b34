// Package notifications announces new Blueprint submissions on a Discord
// webhook.
//
// The webhook URL comes from config or DISCORD_WEBHOOK. When none is set the
// service degrades to a no-op so local runs never fail on notifications.
package notifications

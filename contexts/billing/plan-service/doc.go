// Package planservice resolves a user's plan, gates board creation on it and
// upgrades accounts from verified Stripe checkout webhooks.
package planservice

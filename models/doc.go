// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest, LoginRequest: account credentials
  - CreateBoardRequest: name, description, slug
  - UpdateBoardRequest: optional name, description
  - CreateFeatureRequest: title, description, category, tags, priority, author
  - UpdateFeatureRequest: status
  - VoteRequest: is_downvote, optional reason
  - CreateCommentRequest: content, author_name, author_email

# Response Types

  - AuthResponse: user, token, expires_at
  - VoteResponse: vote_count, has_voted, is_downvote (null when removed), message
  - DashboardResponse: boards, stats, recent_activity
  - ErrorResponse: error, message

# Domain Types

  - User: board owner (password hash never serialized)
  - Board: slug-addressed collection of features
  - Feature: a feature request with vote and comment counts
  - Vote: one per (feature, visitor); visitor hash never serialized
  - Comment: append-only discussion entry
  - ActivityItem: feature/vote/comment event in the dashboard feed

Vote counts are always computed from vote rows; nothing stores a
denormalized counter.
*/
package models
